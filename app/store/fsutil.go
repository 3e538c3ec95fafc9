package store

import (
	"os"
	"path/filepath"
)

// renameFile is swapped in tests to simulate a crash between write and commit.
var renameFile = os.Rename

// writeFileAtomic writes data next to path and renames it into place, so a
// reader sees either the previous file or the complete new one.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &IOError{Op: "create temp file for", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &IOError{Op: "sync", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return &IOError{Op: "chmod", Path: tmpName, Err: err}
	}
	if err := renameFile(tmpName, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}

	committed = true
	return nil
}
