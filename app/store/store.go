package store

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
)

const (
	articlesDirName = "articles"
	feedsDirName    = "feeds"
	stateDirName    = "state"

	articleExt = ".md"
	filePerm   = 0o644
)

// Store is a directory-backed article cache. One Store is opened per process
// with an explicit root; every operation is a method on it.
type Store struct {
	root        string
	articlesDir string
	feedsDir    string
	stateDir    string

	// Serializes check-then-write sequences between fetch workers.
	writeMu sync.Mutex
	now     func() time.Time
}

var (
	_ ArticleRepository = (*Store)(nil)
	_ FeedRepository    = (*Store)(nil)
)

func Open(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("store root is required")
	}

	s := &Store{
		root:        root,
		articlesDir: filepath.Join(root, articlesDirName),
		feedsDir:    filepath.Join(root, feedsDirName),
		stateDir:    filepath.Join(root, stateDirName),
		now:         time.Now,
	}

	for _, dir := range []string{s.articlesDir, s.feedsDir, s.stateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &IOError{Op: "create directory", Path: dir, Err: err}
		}
	}

	return s, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) StateDir() string {
	return s.stateDir
}

// Check verifies that the store directories are still present.
func (s *Store) Check() error {
	for _, dir := range []string{s.articlesDir, s.feedsDir, s.stateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return &IOError{Op: "stat", Path: dir, Err: err}
		}
		if !info.IsDir() {
			return &IOError{Op: "open", Path: dir, Err: fmt.Errorf("not a directory")}
		}
	}
	return nil
}

func (s *Store) ArticlePath(id string) string {
	return filepath.Join(s.articlesDir, Key(NormalizeID(id))+articleExt)
}

// InsertIfAbsent stores a new article and reports whether it was written.
// An article whose key already exists is left untouched.
func (s *Store) InsertIfAbsent(a Article) (bool, error) {
	a.ID = NormalizeID(a.ID)
	if a.ID == "" {
		return false, fmt.Errorf("article id is required")
	}

	path := s.ArticlePath(a.ID)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, &IOError{Op: "stat", Path: path, Err: err}
	}

	if a.Published == nil {
		now := s.now().UTC().Truncate(time.Second)
		a.Published = &now
	}

	if err := writeFileAtomic(path, Encode(a), filePerm); err != nil {
		return false, err
	}

	return true, nil
}

// GetByID looks an article up by its computed file name. A missing file
// yields (nil, nil); a file that fails to decode yields *MalformedRecordError.
func (s *Store) GetByID(id string) (*Article, error) {
	id = NormalizeID(id)
	path := s.ArticlePath(id)

	a, err := s.readArticleFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	if a.ID != id {
		slog.Warn("Article key collision", "id", id, "stored_id", a.ID, "path", path)
		return nil, nil
	}

	return &a, nil
}

// SetField rewrites one boolean header line of a stored article in place.
// The rest of the file is kept byte for byte, and so is its modification
// time, which keeps ListRecent ordered by ingestion.
func (s *Store) SetField(id string, field Field, value bool) error {
	if !field.valid() {
		return fmt.Errorf("field %q is not mutable", field)
	}

	id = NormalizeID(id)
	path := s.ArticlePath(id)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(id)
		}
		return &IOError{Op: "stat", Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &IOError{Op: "read", Path: path, Err: err}
	}

	current, err := Decode(data)
	if err != nil {
		return &MalformedRecordError{Path: path, Err: err}
	}
	if current.ID != id {
		return notFound(id)
	}

	patched, err := patchHeaderField(string(data), string(field), strconv.FormatBool(value))
	if err != nil {
		return &MalformedRecordError{Path: path, Err: err}
	}
	if patched == string(data) {
		return nil
	}

	if err := writeFileAtomic(path, []byte(patched), info.Mode().Perm()); err != nil {
		return err
	}

	if err := os.Chtimes(path, info.ModTime(), info.ModTime()); err != nil {
		slog.Warn("Failed to restore article modification time", "path", path, "error", err)
	}

	return nil
}

func (s *Store) MarkRead(id string) error {
	return s.SetField(id, FieldRead, true)
}

func (s *Store) MarkUnread(id string) error {
	return s.SetField(id, FieldRead, false)
}

// ToggleStar flips the starred flag and returns the new value. The read and
// the write are not atomic against another process touching the same file.
func (s *Store) ToggleStar(id string) (bool, error) {
	a, err := s.GetByID(id)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, notFound(id)
	}

	starred := !a.Starred
	if err := s.SetField(id, FieldStarred, starred); err != nil {
		return false, err
	}

	return starred, nil
}

// ListRecent returns stored articles, most recently written first. Files that
// cannot be read or decoded are skipped. A limit <= 0 returns everything.
func (s *Store) ListRecent(limit int) ([]Article, error) {
	files, err := s.articleFiles()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(files, func(a, b articleFile) int {
		if c := b.modTime.Compare(a.modTime); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})

	articles := make([]Article, 0, len(files))
	for _, f := range files {
		a, err := s.readArticleFile(f.path)
		if err != nil {
			slog.Debug("Skipping unreadable article", "path", f.path, "error", err)
			continue
		}
		articles = append(articles, a)
		if limit > 0 && len(articles) == limit {
			break
		}
	}

	return articles, nil
}

// Search returns articles whose encoded text contains query, compared with
// Unicode case folding. Results are ordered newest published first; articles
// without a date sort after all dated ones, ties by id.
func (s *Store) Search(query string) ([]Article, error) {
	files, err := s.articleFiles()
	if err != nil {
		return nil, err
	}

	caser := cases.Fold()
	needle := caser.String(query)

	var results []Article
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			slog.Debug("Skipping unreadable article", "path", f.path, "error", err)
			continue
		}
		if !strings.Contains(caser.String(string(data)), needle) {
			continue
		}

		a, err := Decode(data)
		if err != nil {
			slog.Debug("Skipping malformed article", "path", f.path, "error", err)
			continue
		}
		results = append(results, a)
	}

	SortByPublished(results)
	return results, nil
}

func (s *Store) CountUnread() (int, error) {
	stats, err := s.articleStats()
	if err != nil {
		return 0, err
	}
	return stats.Unread, nil
}

func (s *Store) Stats() (Stats, error) {
	stats, err := s.articleStats()
	if err != nil {
		return Stats{}, err
	}

	feeds, err := s.ListFeedMeta()
	if err != nil {
		return Stats{}, err
	}
	stats.Feeds = len(feeds)

	return stats, nil
}

func (s *Store) articleStats() (Stats, error) {
	files, err := s.articleFiles()
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, f := range files {
		a, err := s.readArticleFile(f.path)
		if err != nil {
			slog.Debug("Skipping unreadable article", "path", f.path, "error", err)
			continue
		}
		stats.Articles++
		if !a.Read {
			stats.Unread++
		}
		if a.Starred {
			stats.Starred++
		}
	}

	return stats, nil
}

// SortByPublished orders articles newest first. Undated articles sort as the
// oldest; equal dates fall back to ascending id so the order is total.
func SortByPublished(articles []Article) {
	slices.SortStableFunc(articles, func(a, b Article) int {
		switch {
		case a.Published != nil && b.Published != nil:
			if c := b.Published.Compare(*a.Published); c != 0 {
				return c
			}
		case a.Published != nil:
			return -1
		case b.Published != nil:
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

type articleFile struct {
	name    string
	path    string
	modTime time.Time
}

func (s *Store) articleFiles() ([]articleFile, error) {
	entries, err := os.ReadDir(s.articlesDir)
	if err != nil {
		return nil, &IOError{Op: "read directory", Path: s.articlesDir, Err: err}
	}

	files := make([]articleFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != articleExt {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}

		files = append(files, articleFile{
			name:    name,
			path:    filepath.Join(s.articlesDir, name),
			modTime: info.ModTime(),
		})
	}

	return files, nil
}

func (s *Store) readArticleFile(path string) (Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Article{}, err
		}
		return Article{}, &IOError{Op: "read", Path: path, Err: err}
	}

	a, err := Decode(data)
	if err != nil {
		return Article{}, &MalformedRecordError{Path: path, Err: err}
	}

	return a, nil
}
