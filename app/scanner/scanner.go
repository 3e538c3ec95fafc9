// Package scanner discovers feed URLs tagged with #feed in markdown notes.
package scanner

import (
	"bufio"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var feedTag = regexp.MustCompile(`#feed\s+(https?://[^\s)>\]]+)`)

// Source is one discovered feed and where it was first seen.
type Source struct {
	URL  string
	File string
	Line int // 1-based
}

// Scan walks root for *.md files and returns every tagged feed URL once, in
// the order first seen. Unreadable files are logged and skipped.
func Scan(root string) ([]Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access scan path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan path %s is not a directory", root)
	}

	seen := make(map[string]bool)
	var sources []Source

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("Skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}

		found, err := scanFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable file", "path", path, "error", err)
			return nil
		}

		for _, source := range found {
			if seen[source.URL] {
				continue
			}
			seen[source.URL] = true
			sources = append(sources, source)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return sources, nil
}

func scanFile(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sources []Source
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		for _, match := range feedTag.FindAllStringSubmatch(scanner.Text(), -1) {
			url := cleanURL(match[1])
			if url == "" {
				continue
			}
			sources = append(sources, Source{URL: url, File: path, Line: line})
		}
	}

	return sources, scanner.Err()
}

// cleanURL drops trailing punctuation picked up from surrounding prose.
func cleanURL(url string) string {
	return strings.TrimRight(strings.TrimSpace(url), ".,)]>")
}

// URLs returns the URLs of sources in order.
func URLs(sources []Source) []string {
	urls := make([]string, len(sources))
	for i, source := range sources {
		urls[i] = source.URL
	}
	return urls
}
