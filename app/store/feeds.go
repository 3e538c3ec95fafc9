package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	feedMetaExt  = ".json"
	feedListName = "feeds.txt"
)

func (s *Store) feedMetaPath(url string) string {
	return filepath.Join(s.feedsDir, Key(url)+feedMetaExt)
}

// SaveFeedMeta overwrites the metadata record of a feed.
func (s *Store) SaveFeedMeta(meta FeedMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return writeFileAtomic(s.feedMetaPath(meta.URL), data, filePerm)
}

// GetFeedMeta returns (nil, nil) when the feed has never been fetched.
func (s *Store) GetFeedMeta(url string) (*FeedMeta, error) {
	path := s.feedMetaPath(url)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	var meta FeedMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, &MalformedRecordError{Path: path, Err: err}
	}

	return &meta, nil
}

// ListFeedMeta returns every readable feed record ordered by URL.
func (s *Store) ListFeedMeta() ([]FeedMeta, error) {
	entries, err := os.ReadDir(s.feedsDir)
	if err != nil {
		return nil, &IOError{Op: "read directory", Path: s.feedsDir, Err: err}
	}

	var feeds []FeedMeta
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != feedMetaExt {
			continue
		}

		path := filepath.Join(s.feedsDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Debug("Skipping unreadable feed metadata", "path", path, "error", err)
			continue
		}

		var meta FeedMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			slog.Debug("Skipping malformed feed metadata", "path", path, "error", err)
			continue
		}
		feeds = append(feeds, meta)
	}

	slices.SortFunc(feeds, func(a, b FeedMeta) int {
		return strings.Compare(a.URL, b.URL)
	})

	return feeds, nil
}

// SaveFeedList replaces the stored feed list.
func (s *Store) SaveFeedList(urls []string) error {
	var buf bytes.Buffer
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		buf.WriteString(url + "\n")
	}

	return writeFileAtomic(filepath.Join(s.stateDir, feedListName), buf.Bytes(), filePerm)
}

// LoadFeedList returns the stored feed list, or an empty list if none was saved yet.
func (s *Store) LoadFeedList() ([]string, error) {
	path := filepath.Join(s.stateDir, feedListName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	urls := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Op: "parse", Path: path, Err: err}
	}

	return urls, nil
}
