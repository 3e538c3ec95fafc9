package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("article not found")
	ErrMalformedFrontmatter = errors.New("malformed frontmatter")
)

// IOError reports a filesystem failure. It is surfaced to the caller as is;
// the store never retries.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// MalformedRecordError reports an article file that exists but cannot be decoded.
type MalformedRecordError struct {
	Path string
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed article record %s: %v", e.Path, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
