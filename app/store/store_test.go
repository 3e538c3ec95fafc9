package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return s
}

func testArticle(id, title string) Article {
	published := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return Article{
		ID:        id,
		FeedURL:   "https://example.com/feed.xml",
		Title:     title,
		Link:      "https://example.com/" + id,
		Content:   "Content of " + title,
		Published: &published,
	}
}

func mustInsert(t *testing.T, s *Store, a Article) {
	t.Helper()

	inserted, err := s.InsertIfAbsent(a)
	if err != nil {
		t.Fatalf("InsertIfAbsent(%s) failed: %v", a.ID, err)
	}
	if !inserted {
		t.Fatalf("Expected %s to be inserted", a.ID)
	}
}

func TestOpen_CreatesLayout(t *testing.T) {
	root := t.TempDir()

	s, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for _, dir := range []string{"articles", "feeds", "state"} {
		info, err := os.Stat(filepath.Join(root, dir))
		if err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s to exist", dir)
		}
	}
	if err := s.Check(); err != nil {
		t.Errorf("Expected Check to pass, got %v", err)
	}
}

func TestCheck_MissingDirectory(t *testing.T) {
	s := newTestStore(t)

	if err := os.RemoveAll(s.articlesDir); err != nil {
		t.Fatal(err)
	}

	var ioErr *IOError
	if err := s.Check(); !errors.As(err, &ioErr) {
		t.Errorf("Expected IOError, got %v", err)
	}
}

func TestInsertIfAbsent_Idempotent(t *testing.T) {
	s := newTestStore(t)

	first := testArticle("a1", "Original title")
	mustInsert(t, s, first)

	second := testArticle("a1", "Changed title")
	inserted, err := s.InsertIfAbsent(second)
	if err != nil {
		t.Fatalf("Second insert failed: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate insert to be ignored")
	}

	got, err := s.GetByID("a1")
	if err != nil || got == nil {
		t.Fatalf("Expected stored article, got %v, %v", got, err)
	}
	if got.Title != "Original title" {
		t.Errorf("Expected first write to win, got title '%s'", got.Title)
	}
}

func TestInsertIfAbsent_DefaultsPublished(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2025, 6, 7, 8, 9, 10, 123, time.UTC)
	s.now = func() time.Time { return fixed }

	a := testArticle("undated", "Undated")
	a.Published = nil
	mustInsert(t, s, a)

	got, err := s.GetByID("undated")
	if err != nil || got == nil {
		t.Fatalf("Expected stored article, got %v, %v", got, err)
	}
	if got.Published == nil || !got.Published.Equal(fixed.Truncate(time.Second)) {
		t.Errorf("Expected published %v, got %v", fixed.Truncate(time.Second), got.Published)
	}
}

func TestGetByID_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	a := testArticle("https://example.com/posts/42?ref=rss", "Post 42")
	a.Author = "Alice"
	mustInsert(t, s, a)

	got, err := s.GetByID(a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected article, got nil")
	}
	if got.ID != a.ID || got.Title != a.Title || got.Author != "Alice" || got.Content != a.Content {
		t.Errorf("Expected round trip of %+v, got %+v", a, got)
	}
	if got.Read || got.Starred {
		t.Error("Expected new article to be unread and unstarred")
	}
}

func TestGetByID_Missing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetByID("nope")
	if err != nil {
		t.Errorf("Expected no error for missing article, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil article, got %+v", got)
	}
}

func TestGetByID_Malformed(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(s.ArticlePath("broken"), []byte("not an article"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetByID("broken")
	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Errorf("Expected MalformedRecordError, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil article, got %+v", got)
	}
}

func TestInsertIfAbsent_WhitespaceInID(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		id   string
		want string
	}{
		{" padded ", "padded"},
		{"line\nbreak", "line break"},
		{"crlf\r\nguid\t", "crlf guid"},
	}

	for _, tt := range tests {
		inserted, err := s.InsertIfAbsent(testArticle(tt.id, "Title"))
		if err != nil || !inserted {
			t.Fatalf("Expected %q to be inserted, got %v, %v", tt.id, inserted, err)
		}

		got, err := s.GetByID(tt.id)
		if err != nil || got == nil {
			t.Fatalf("Expected %q to be readable after insert, got %v, %v", tt.id, got, err)
		}
		if got.ID != tt.want {
			t.Errorf("Expected stored id %q, got %q", tt.want, got.ID)
		}

		if err := s.MarkRead(tt.id); err != nil {
			t.Errorf("Expected MarkRead(%q) to succeed, got %v", tt.id, err)
		}
		if got, _ := s.GetByID(tt.want); got == nil || !got.Read {
			t.Errorf("Expected %q to be read via its normalized id", tt.want)
		}

		inserted, err = s.InsertIfAbsent(testArticle(tt.want, "Again"))
		if err != nil || inserted {
			t.Errorf("Expected normalized id %q to be a duplicate, got %v, %v", tt.want, inserted, err)
		}
	}

	if _, err := s.InsertIfAbsent(testArticle(" \n ", "Blank")); err == nil {
		t.Error("Expected error for an id that is only whitespace")
	}
}

func TestGetByID_KeyCollision(t *testing.T) {
	s := newTestStore(t)

	stored := testArticle("other-id", "Other")
	if err := os.WriteFile(s.ArticlePath("requested"), Encode(stored), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetByID("requested")
	if err != nil || got != nil {
		t.Errorf("Expected (nil, nil) for a file holding another id, got %+v, %v", got, err)
	}
}

func TestSetField_OnlyTargetChanges(t *testing.T) {
	s := newTestStore(t)

	a := testArticle("a1", "Title")
	a.Content = "read: false\nstarred: false"
	mustInsert(t, s, a)

	before, err := os.ReadFile(s.ArticlePath("a1"))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.MarkRead("a1"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	after, err := os.ReadFile(s.ArticlePath("a1"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := Decode(after)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !got.Read {
		t.Error("Expected article to be read")
	}
	if got.Starred {
		t.Error("Expected starred to stay false")
	}
	if got.Content != a.Content {
		t.Errorf("Expected body to be untouched, got %q", got.Content)
	}

	expected, err := patchHeaderField(string(before), "read", "true")
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != expected {
		t.Errorf("Expected only the read header line to change:\n%s\ngot:\n%s", expected, after)
	}
}

func TestSetField_NotFoundTouchesNothing(t *testing.T) {
	s := newTestStore(t)

	err := s.SetField("ghost", FieldRead, true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	entries, err := os.ReadDir(s.articlesDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no files to be created, found %d", len(entries))
	}

	if _, err := s.ToggleStar("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from ToggleStar, got %v", err)
	}
}

func TestSetField_RejectsUnknownField(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, testArticle("a1", "Title"))

	if err := s.SetField("a1", Field("title"), true); err == nil {
		t.Error("Expected error for an immutable field")
	}
}

func TestSetField_PreservesModTime(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, testArticle("a1", "Title"))

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(s.ArticlePath("a1"), old, old); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ToggleStar("a1"); err != nil {
		t.Fatalf("ToggleStar failed: %v", err)
	}

	info, err := os.Stat(s.ArticlePath("a1"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("Expected mod time %v, got %v", old, info.ModTime())
	}
}

func TestToggleStar_Symmetric(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, testArticle("a1", "Title"))

	original, err := os.ReadFile(s.ArticlePath("a1"))
	if err != nil {
		t.Fatal(err)
	}

	starred, err := s.ToggleStar("a1")
	if err != nil || !starred {
		t.Fatalf("Expected first toggle to star, got %v, %v", starred, err)
	}

	starred, err = s.ToggleStar("a1")
	if err != nil || starred {
		t.Fatalf("Expected second toggle to unstar, got %v, %v", starred, err)
	}

	final, err := os.ReadFile(s.ArticlePath("a1"))
	if err != nil {
		t.Fatal(err)
	}
	if string(final) != string(original) {
		t.Errorf("Expected file to be restored after two toggles:\n%s\ngot:\n%s", original, final)
	}
}

func TestMarkUnread(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, testArticle("a1", "Title"))

	if err := s.MarkRead("a1"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkUnread("a1"); err != nil {
		t.Fatalf("MarkUnread failed: %v", err)
	}

	got, err := s.GetByID("a1")
	if err != nil || got == nil {
		t.Fatalf("Expected article, got %v, %v", got, err)
	}
	if got.Read {
		t.Error("Expected article to be unread")
	}
}

func TestListRecent_OrderAndLimit(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "middle", "new"} {
		mustInsert(t, s, testArticle(id, id))
		mtime := base.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(s.ArticlePath(id), mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListRecent(0)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 articles, got %d", len(all))
	}
	for i, id := range []string{"new", "middle", "old"} {
		if all[i].ID != id {
			t.Errorf("Expected article %d to be '%s', got '%s'", i, id, all[i].ID)
		}
	}

	limited, err := s.ListRecent(2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "new" || limited[1].ID != "middle" {
		t.Errorf("Expected [new middle], got %d articles", len(limited))
	}
}

func TestListRecent_TiesByKey(t *testing.T) {
	s := newTestStore(t)

	same := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"c", "a", "b"} {
		mustInsert(t, s, testArticle(id, id))
		if err := os.Chtimes(s.ArticlePath(id), same, same); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListRecent(0)
	if err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"a", "b", "c"} {
		if all[i].ID != id {
			t.Errorf("Expected article %d to be '%s', got '%s'", i, id, all[i].ID)
		}
	}
}

func TestListRecent_SkipsBadRecords(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, testArticle("good", "Good"))

	if err := os.WriteFile(filepath.Join(s.articlesDir, "bad.md"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(s.articlesDir, "bad.md"), future, future); err != nil {
		t.Fatal(err)
	}

	articles, err := s.ListRecent(1)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(articles) != 1 || articles[0].ID != "good" {
		t.Errorf("Expected the limit to count decoded records only, got %d articles", len(articles))
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)

	rust := testArticle("rust", "Rust async runtimes")
	rust.Content = "Comparing Tokio and async-std"
	bread := testArticle("bread", "Baking bread")
	bread.Content = "Sourdough basics"
	mustInsert(t, s, rust)
	mustInsert(t, s, bread)

	results, err := s.Search("ASYNC")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "rust" {
		t.Errorf("Expected only the rust article, got %d results", len(results))
	}

	results, err = s.Search("sourdough")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "bread" {
		t.Errorf("Expected only the bread article, got %d results", len(results))
	}

	results, err = s.Search("nothing matches this")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}

	results, err = s.Search("")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("Expected empty query to match everything, got %d", len(results))
	}
}

func TestSearch_UnicodeFolding(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, testArticle("strasse", "Die Straße"))

	results, err := s.Search("STRASSE")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("Expected case-folded match, got %d results", len(results))
	}
}

func TestSortByPublished(t *testing.T) {
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	articles := []Article{
		{ID: "undated"},
		{ID: "b-old", Published: &older},
		{ID: "new", Published: &newer},
		{ID: "a-old", Published: &older},
	}

	SortByPublished(articles)

	for i, id := range []string{"new", "a-old", "b-old", "undated"} {
		if articles[i].ID != id {
			t.Errorf("Expected article %d to be '%s', got '%s'", i, id, articles[i].ID)
		}
	}
}

func TestCountUnread(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"one", "two", "three"} {
		mustInsert(t, s, testArticle(id, id))
	}
	if err := s.MarkRead("two"); err != nil {
		t.Fatal(err)
	}

	count, err := s.CountUnread()
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 unread, got %d", count)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)

	mustInsert(t, s, testArticle("one", "One"))
	mustInsert(t, s, testArticle("two", "Two"))
	if _, err := s.ToggleStar("one"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkRead("one"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveFeedMeta(FeedMeta{URL: "https://example.com/feed.xml"}); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	expected := Stats{Articles: 2, Unread: 1, Starred: 1, Feeds: 1}
	if stats != expected {
		t.Errorf("Expected %+v, got %+v", expected, stats)
	}
}

func TestCrashSafety_FailedInsertLeavesNothing(t *testing.T) {
	s := newTestStore(t)

	renameFile = func(string, string) error { return errors.New("simulated crash") }
	t.Cleanup(func() { renameFile = os.Rename })

	_, err := s.InsertIfAbsent(testArticle("a1", "Title"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Expected IOError, got %v", err)
	}

	entries, err := os.ReadDir(s.articlesDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no files after failed insert, found %d", len(entries))
	}

	got, err := s.GetByID("a1")
	if err != nil || got != nil {
		t.Errorf("Expected article to be absent, got %+v, %v", got, err)
	}
}

func TestCrashSafety_FailedUpdateKeepsPrevious(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, testArticle("a1", "Title"))

	before, err := os.ReadFile(s.ArticlePath("a1"))
	if err != nil {
		t.Fatal(err)
	}

	renameFile = func(string, string) error { return errors.New("simulated crash") }
	t.Cleanup(func() { renameFile = os.Rename })

	if err := s.MarkRead("a1"); err == nil {
		t.Fatal("Expected MarkRead to fail")
	}

	after, err := os.ReadFile(s.ArticlePath("a1"))
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(before) {
		t.Error("Expected previous record to stay intact after a failed write")
	}
}

func TestCrashSafety_TempFilesIgnored(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, testArticle("a1", "Title"))

	leftover := filepath.Join(s.articlesDir, ".a2.md.tmp-12345")
	if err := os.WriteFile(leftover, []byte("---\nid: a2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	articles, err := s.ListRecent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 1 {
		t.Errorf("Expected temp files to be ignored, got %d articles", len(articles))
	}

	count, err := s.CountUnread()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 unread, got %d", count)
	}

	results, err := s.Search("a2")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("Expected temp files to be ignored by search, got %d results", len(results))
	}
}
