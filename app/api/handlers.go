package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/navireader/app/database"
	"github.com/lysyi3m/navireader/app/feed"
	"github.com/lysyi3m/navireader/app/store"
	"github.com/lysyi3m/navireader/app/tasks"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func NewHandler(st ArticleStore, history database.HistoryRepository,
	scheduler tasks.RefreshScheduler, version string) *Handler {
	return &Handler{
		store:     st,
		history:   history,
		generator: feed.NewGenerator(),
		scheduler: scheduler,
		version:   version,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if err := h.store.Check(); err != nil {
		slog.Error("Store check failed", "error", err)
		health["status"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats()
	if err != nil {
		slog.Error("Store error", "operation", "stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Store error"})
		return
	}

	response := gin.H{
		"articles": stats.Articles,
		"unread":   stats.Unread,
		"starred":  stats.Starred,
		"feeds":    stats.Feeds,
	}

	if h.scheduler != nil {
		if report := newReportResponse(h.scheduler.LastReport()); report != nil {
			response["last_run"] = report
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetStarredFeed exports starred articles as RSS 2.0, newest first.
func (h *Handler) GetStarredFeed(c *gin.Context) {
	articles, err := h.store.ListRecent(0)
	if err != nil {
		slog.Error("Store error", "operation", "list_recent", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	starred := make([]store.Article, 0)
	for _, a := range articles {
		if a.Starred {
			starred = append(starred, a)
		}
	}
	store.SortByPublished(starred)

	channel := feed.Channel{
		Title:       "NaviReader starred articles",
		Link:        requestBaseURL(c),
		Description: "Articles starred in NaviReader",
		SelfURL:     requestBaseURL(c) + c.Request.URL.Path,
		Version:     h.version,
	}

	rss, err := h.generator.Run(channel, starred)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(starred)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) ListArticles(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = min(n, maxListLimit)
	}
	unreadOnly := c.Query("unread") == "true" || c.Query("unread") == "1"

	// Unread filtering happens after the listing, so read everything in that case.
	fetchLimit := limit
	if unreadOnly {
		fetchLimit = 0
	}

	articles, err := h.store.ListRecent(fetchLimit)
	if err != nil {
		slog.Error("Store error", "operation", "list_recent", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Store error"})
		return
	}

	items := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		if unreadOnly && a.Read {
			continue
		}
		items = append(items, newArticleResponse(a, false))
		if len(items) == limit {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": items,
		"total":    len(items),
	})
}

func (h *Handler) SearchArticles(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing q parameter"})
		return
	}

	articles, err := h.store.Search(query)
	if err != nil {
		slog.Error("Store error", "operation", "search", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Store error"})
		return
	}

	items := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		items = append(items, newArticleResponse(a, false))
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"articles": items,
		"total":    len(items),
	})
}

func (h *Handler) GetArticle(c *gin.Context) {
	id := c.Param("id")

	article, err := h.store.GetByID(id)
	if err != nil {
		h.storeError(c, "get_article", id, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, newArticleResponse(*article, true))
}

func (h *Handler) MarkRead(c *gin.Context) {
	h.setRead(c, true)
}

func (h *Handler) MarkUnread(c *gin.Context) {
	h.setRead(c, false)
}

func (h *Handler) setRead(c *gin.Context, read bool) {
	id := c.Param("id")

	var err error
	if read {
		err = h.store.MarkRead(id)
	} else {
		err = h.store.MarkUnread(id)
	}
	if err != nil {
		h.storeError(c, "set_read", id, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "read": read})
}

func (h *Handler) ToggleStar(c *gin.Context) {
	id := c.Param("id")

	starred, err := h.store.ToggleStar(id)
	if err != nil {
		h.storeError(c, "toggle_star", id, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "starred": starred})
}

func (h *Handler) ListFeeds(c *gin.Context) {
	urls, err := h.store.LoadFeedList()
	if err != nil {
		slog.Error("Store error", "operation", "load_feed_list", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Store error"})
		return
	}

	latest := make(map[string]database.FeedRun)
	if h.history != nil {
		runs, err := h.history.LatestResults()
		if err != nil {
			slog.Warn("Failed to load fetch history", "error", err)
		}
		for _, run := range runs {
			latest[run.FeedURL] = run
		}
	}

	feeds := make([]feedResponse, 0, len(urls))
	for _, url := range urls {
		info := feedResponse{URL: url}

		meta, err := h.store.GetFeedMeta(url)
		if err != nil {
			slog.Warn("Failed to read feed metadata", "feed", url, "error", err)
		}
		if meta != nil {
			info.Title = meta.Title
			info.Description = meta.Description
			fetched := meta.LastFetched
			info.LastFetched = &fetched
		}

		if run, ok := latest[url]; ok {
			info.LastNew = run.New
			if run.OK() {
				info.LastStatus = "ok"
			} else {
				info.LastStatus = "error"
				info.LastError = run.Error
			}
		}

		feeds = append(feeds, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) TriggerFetch(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler is not running"})
		return
	}

	queued := h.scheduler.Trigger()

	message := "Refresh queued"
	if !queued {
		message = "Refresh already pending"
	}

	c.JSON(http.StatusAccepted, gin.H{
		"queued":  queued,
		"message": message,
	})
}

func (h *Handler) storeError(c *gin.Context, op, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	var malformed *store.MalformedRecordError
	if errors.As(err, &malformed) {
		slog.Error("Malformed article record", "operation", op, "id", id, "path", malformed.Path, "error", malformed.Err)
	} else {
		slog.Error("Store error", "operation", op, "id", id, "error", err)
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Store error"})
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
