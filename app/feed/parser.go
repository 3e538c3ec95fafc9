package feed

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/navireader/app/store"
)

const defaultTitle = "Untitled"

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses RSS, Atom or JSON feed data fetched from feedURL.
func (p *Parser) Run(feedURL string, data []byte) (*Feed, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	feed := &Feed{
		URL:         feedURL,
		Title:       cmp.Or(strings.TrimSpace(parsed.Title), feedURL),
		Description: strings.TrimSpace(parsed.Description),
		Items:       make([]store.Article, 0, len(parsed.Items)),
	}

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		feed.Items = append(feed.Items, p.normalizeItem(feedURL, item))
	}

	return feed, nil
}

func (p *Parser) normalizeItem(feedURL string, item *gofeed.Item) store.Article {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if link == "" && len(item.Links) > 0 {
		link = strings.TrimSpace(item.Links[0])
	}

	article := store.Article{
		ID:          store.NormalizeID(cmp.Or(strings.TrimSpace(item.GUID), link, p.generateContentHash(title, link))),
		FeedURL:     feedURL,
		Title:       cmp.Or(title, defaultTitle),
		Link:        cmp.Or(link, feedURL),
		Description: item.Description,
		Content:     cmp.Or(item.Content, item.Description),
		Author:      p.firstAuthor(item),
	}

	switch {
	case item.PublishedParsed != nil:
		article.Published = utc(*item.PublishedParsed)
	case item.UpdatedParsed != nil:
		article.Published = utc(*item.UpdatedParsed)
	}

	return article
}

func (p *Parser) generateContentHash(title, link string) string {
	hash := sha256.Sum256([]byte(title + "|" + link))
	return hex.EncodeToString(hash[:])
}

func (p *Parser) firstAuthor(item *gofeed.Item) string {
	for _, author := range item.Authors {
		if author == nil {
			continue
		}
		if name := p.formatAuthor(author.Name, author.Email); name != "" {
			return name
		}
	}

	if item.Author != nil {
		return p.formatAuthor(item.Author.Name, item.Author.Email)
	}

	return ""
}

func (p *Parser) formatAuthor(name, email string) string {
	return cmp.Or(strings.TrimSpace(name), strings.TrimSpace(email))
}

func utc(t time.Time) *time.Time {
	t = t.UTC()
	return &t
}
