package commands

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/lysyi3m/navireader/app/store"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>First post</title>
      <link>https://example.com/1</link>
      <guid>post-1</guid>
      <description>Hello</description>
    </item>
    <item>
      <title>Second post</title>
      <link>https://example.com/2</link>
      <guid>post-2</guid>
      <description>World</description>
    </item>
  </channel>
</rss>`

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := NewApp()
	app.printer = &Printer{out: &out, err: &out}

	parser := NewParser(app)
	parser.Options &^= flags.PrintErrors

	full := append([]string{"--data-dir", dataDir, "--config", filepath.Join(dataDir, "absent.yml")}, args...)
	_, err := parser.ParseArgs(full)
	return out.String(), err
}

func TestNewParser_Commands(t *testing.T) {
	parser := NewParser(NewApp())

	for _, name := range []string{"scan", "fetch", "view", "list", "search", "read", "unread", "star", "feeds", "stats", "serve", "version"} {
		if parser.Find(name) == nil {
			t.Errorf("Expected command %q to be registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "navireader ") {
		t.Errorf("Expected version output, got %q", out)
	}
}

func TestScanAndFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed.xml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testFeed)
	}))
	defer server.Close()

	dataDir := t.TempDir()
	notesDir := t.TempDir()
	note := fmt.Sprintf("# Reading\n\n#feed %s/feed.xml\n#feed %s/missing.xml.\n", server.URL, server.URL)
	if err := os.WriteFile(filepath.Join(notesDir, "reading.md"), []byte(note), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dataDir, "scan", "--path", notesDir)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(out, "Found 2 RSS feeds:") {
		t.Errorf("Expected 2 feeds to be found, got %q", out)
	}

	out, err = run(t, dataDir, "fetch")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(out, "✓ "+server.URL+"/feed.xml: 2 new, 0 already cached") {
		t.Errorf("Expected success line for the feed, got %q", out)
	}
	if !strings.Contains(out, "✗ "+server.URL+"/missing.xml") {
		t.Errorf("Expected failure line for the missing feed, got %q", out)
	}
	if !strings.Contains(out, "Fetched 1/2 feeds, 2 new articles") {
		t.Errorf("Expected tally, got %q", out)
	}

	out, err = run(t, dataDir, "fetch")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "0 new, 2 already cached") {
		t.Errorf("Expected second fetch to find only duplicates, got %q", out)
	}

	out, err = run(t, dataDir, "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "First post") || !strings.Contains(out, "Second post") {
		t.Errorf("Expected both articles listed, got %q", out)
	}

	out, err = run(t, dataDir, "feeds")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Test Feed") {
		t.Errorf("Expected feed title in feeds output, got %q", out)
	}
}

func TestFetch_NoFeeds(t *testing.T) {
	out, err := run(t, t.TempDir(), "fetch")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No feeds to fetch") {
		t.Errorf("Expected hint, got %q", out)
	}
}

func TestStateCommands(t *testing.T) {
	dataDir := t.TempDir()
	st, err := store.Open(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	published := time.Now().Add(-time.Hour)
	if _, err := st.InsertIfAbsent(store.Article{ID: "a1", Title: "Go tips", Published: &published}); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, dataDir, "read", "a1"); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, dataDir, "star", "a1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Starred a1") {
		t.Errorf("Expected star confirmation, got %q", out)
	}

	a, _ := st.GetByID("a1")
	if !a.Read || !a.Starred {
		t.Errorf("Expected article read and starred, got read=%v starred=%v", a.Read, a.Starred)
	}

	out, err = run(t, dataDir, "list", "--starred")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Go tips") {
		t.Errorf("Expected starred article in list, got %q", out)
	}

	out, err = run(t, dataDir, "list", "--unread")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No articles found") {
		t.Errorf("Expected no unread articles, got %q", out)
	}

	out, err = run(t, dataDir, "search", "GO", "TIPS")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Go tips") {
		t.Errorf("Expected search hit, got %q", out)
	}

	if _, err := run(t, dataDir, "read", "missing"); err == nil {
		t.Error("Expected error for unknown article")
	}
}

func TestStatsCommand(t *testing.T) {
	dataDir := t.TempDir()
	st, err := store.Open(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"a1", "a2"} {
		if _, err := st.InsertIfAbsent(store.Article{ID: id, Title: id}); err != nil {
			t.Fatal(err)
		}
	}

	out, err := run(t, dataDir, "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Articles:       2") || !strings.Contains(out, "Unread:         2") {
		t.Errorf("Unexpected stats output: %q", out)
	}
}

func TestHelpers(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected 'short', got %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("Expected 'abcd…', got %q", got)
	}
	if got := feedHost("https://www.example.com/feed"); got != "example.com" {
		t.Errorf("Expected 'example.com', got %q", got)
	}
	if got := articleFlags(store.Article{Starred: true}); got != "●★" {
		t.Errorf("Expected '●★', got %q", got)
	}
	if got := relativeTime(store.Article{}); got != "-" {
		t.Errorf("Expected '-', got %q", got)
	}
}
