package viewer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/lysyi3m/navireader/app/feed"
	"github.com/lysyi3m/navireader/app/store"
)

const maxSlugRunes = 50

var ErrNoteExists = errors.New("note already exists")

// CreateNote writes a zettel for article into dir and returns its path.
// An existing file is never overwritten.
func CreateNote(dir string, article store.Article, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("notes directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create notes directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.md", now.Format("200601021504"), slug(article.Title))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrNoteExists, path)
		}
		return "", fmt.Errorf("failed to create note: %w", err)
	}

	if _, err := f.WriteString(noteContent(article)); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write note: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write note: %w", err)
	}

	return path, nil
}

func noteContent(article store.Article) string {
	var b strings.Builder

	b.WriteString("# " + article.Title + "\n\n")
	b.WriteString("Source: " + article.Link + "\n")
	b.WriteString("Feed: " + article.FeedURL + "\n")
	if article.Published != nil {
		b.WriteString("Date: " + article.Published.UTC().Format(time.RFC3339) + "\n")
	}

	b.WriteString("\n## Summary\n\n")
	b.WriteString(feed.FirstParagraph(feed.HTMLToText(article.Content)))
	b.WriteString("\n\n## Notes\n\n")

	return b.String()
}

// slug keeps lowercase letters, digits, '-' and '_'; whitespace becomes '-'.
func slug(title string) string {
	var b strings.Builder
	count := 0
	lastDash := false

	for _, r := range strings.ToLower(title) {
		if count == maxSlugRunes {
			break
		}

		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastDash = false
		case r == '-' || unicode.IsSpace(r):
			if lastDash || b.Len() == 0 {
				continue
			}
			b.WriteRune('-')
			lastDash = true
		default:
			continue
		}
		count++
	}

	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "note"
	}
	return s
}

// OpenInEditor asks the surrounding Neovim instance, if any, to open path.
// It reports whether an editor was asked.
func OpenInEditor(path string) (bool, error) {
	server := os.Getenv("NVIM")
	if server == "" {
		return false, nil
	}

	if err := startCommand("nvim", "--server", server, "--remote", path); err != nil {
		return false, fmt.Errorf("failed to open note in nvim: %w", err)
	}
	return true, nil
}
