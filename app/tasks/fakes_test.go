package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/navireader/app/feed"
	"github.com/lysyi3m/navireader/app/store"
)

type fakeFetcher struct {
	delay    time.Duration
	failURLs map[string]bool
	panicURL string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	calls       atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*feed.Feed, error) {
	f.calls.Add(1)
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)

	for {
		peak := f.maxInFlight.Load()
		if current <= peak || f.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if url == f.panicURL {
		panic("parser exploded")
	}
	if f.failURLs[url] {
		return nil, errors.New("connection refused")
	}

	return &feed.Feed{
		URL:      url,
		Title:    "Feed " + url,
		Filtered: 1,
		Items: []store.Article{
			{ID: url + "#1", FeedURL: url, Title: "One"},
			{ID: url + "#2", FeedURL: url, Title: "Two"},
		},
	}, nil
}

type fakeStore struct {
	mu        sync.Mutex
	articles  map[string]store.Article
	feeds     map[string]store.FeedMeta
	checkErr  error
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		articles: make(map[string]store.Article),
		feeds:    make(map[string]store.FeedMeta),
	}
}

func (s *fakeStore) Check() error {
	return s.checkErr
}

func (s *fakeStore) InsertIfAbsent(a store.Article) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return false, s.insertErr
	}
	if _, ok := s.articles[a.ID]; ok {
		return false, nil
	}
	s.articles[a.ID] = a
	return true, nil
}

func (s *fakeStore) SaveFeedMeta(meta store.FeedMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feeds[meta.URL] = meta
	return nil
}

type fakeHistory struct {
	mu      sync.Mutex
	reports []*Report
	err     error
}

func (h *fakeHistory) RecordReport(report *Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.reports = append(h.reports, report)
	return h.err
}

func feedURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://feed%d.example.com/rss", i)
	}
	return urls
}
