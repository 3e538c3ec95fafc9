package store

import (
	"time"
)

// Article is one cached syndicated item together with its per-user state.
type Article struct {
	ID          string
	FeedURL     string
	Title       string
	Link        string
	Description string
	Content     string
	Author      string
	Published   *time.Time // nil when the feed gave no date or the stored date is unparsable
	Read        bool
	Starred     bool

	Body string // Verbatim body section, populated by Decode only
}

type FeedMeta struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	LastFetched time.Time `json:"last_fetched"`
}

// Field names a mutable header field of a stored article.
type Field string

const (
	FieldRead    Field = "read"
	FieldStarred Field = "starred"
)

func (f Field) valid() bool {
	return f == FieldRead || f == FieldStarred
}

type Stats struct {
	Articles int
	Unread   int
	Starred  int
	Feeds    int
}
