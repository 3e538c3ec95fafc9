package api

import (
	"time"

	"github.com/lysyi3m/navireader/app/database"
	"github.com/lysyi3m/navireader/app/feed"
	"github.com/lysyi3m/navireader/app/store"
	"github.com/lysyi3m/navireader/app/tasks"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, articles []store.Article) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// ArticleStore is what the handlers need from the article cache.
type ArticleStore interface {
	Check() error
	store.ArticleRepository
	store.FeedRepository
}

type Handler struct {
	store     ArticleStore
	history   database.HistoryRepository // nil when history is disabled
	generator GeneratorInterface
	scheduler tasks.RefreshScheduler
	version   string
}

type articleResponse struct {
	ID          string     `json:"id"`
	FeedURL     string     `json:"feed_url"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	Author      string     `json:"author,omitempty"`
	Published   *time.Time `json:"published,omitempty"`
	Read        bool       `json:"read"`
	Starred     bool       `json:"starred"`
}

func newArticleResponse(a store.Article, withContent bool) articleResponse {
	r := articleResponse{
		ID:          a.ID,
		FeedURL:     a.FeedURL,
		Title:       a.Title,
		Link:        a.Link,
		Description: a.Description,
		Author:      a.Author,
		Published:   a.Published,
		Read:        a.Read,
		Starred:     a.Starred,
	}
	if withContent {
		r.Content = a.Content
	}
	return r
}

type feedResponse struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	LastFetched *time.Time `json:"last_fetched,omitempty"`
	LastStatus  string     `json:"last_status,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	LastNew     int        `json:"last_new"`
}

type reportResponse struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Feeds       int       `json:"feeds"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	NewArticles int       `json:"new_articles"`
	Duration    string    `json:"duration"`
}

func newReportResponse(r *tasks.Report) *reportResponse {
	if r == nil {
		return nil
	}
	return &reportResponse{
		ID:          r.ID,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Feeds:       len(r.Results),
		Succeeded:   r.Succeeded(),
		Failed:      r.Failed(),
		NewArticles: r.NewArticles(),
		Duration:    r.Duration().String(),
	}
}
