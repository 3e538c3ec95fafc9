package commands

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/lysyi3m/navireader/app/store"
)

const maxTitleWidth = 60

type ListCommand struct {
	Limit   int  `short:"n" long:"limit" default:"20" description:"Maximum number of articles to show (0 for all)"`
	Unread  bool `short:"u" long:"unread" description:"Only show unread articles"`
	Starred bool `short:"s" long:"starred" description:"Only show starred articles"`

	app *App
}

func (c *ListCommand) Execute(args []string) error {
	if err := c.app.setup(); err != nil {
		return err
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}

	fetchLimit := c.Limit
	if c.Unread || c.Starred {
		fetchLimit = 0
	}

	articles, err := c.app.store.ListRecent(fetchLimit)
	if err != nil {
		return err
	}

	var selected []store.Article
	for _, a := range articles {
		if c.Unread && a.Read {
			continue
		}
		if c.Starred && !a.Starred {
			continue
		}
		selected = append(selected, a)
		if c.Limit > 0 && len(selected) == c.Limit {
			break
		}
	}

	return c.app.printArticles(selected)
}

type SearchCommand struct {
	Args struct {
		Query []string `positional-arg-name:"query" required:"1"`
	} `positional-args:"yes"`

	app *App
}

func (c *SearchCommand) Execute(args []string) error {
	if err := c.app.setup(); err != nil {
		return err
	}

	query := strings.Join(c.Args.Query, " ")
	articles, err := c.app.store.Search(query)
	if err != nil {
		return err
	}

	return c.app.printArticles(articles)
}

func (a *App) printArticles(articles []store.Article) error {
	if len(articles) == 0 {
		a.printer.Print("No articles found")
		return nil
	}

	rows := make([][]string, 0, len(articles))
	for _, article := range articles {
		rows = append(rows, []string{
			articleFlags(article),
			article.ID,
			truncate(article.Title, maxTitleWidth),
			feedHost(article.FeedURL),
			relativeTime(article),
		})
	}

	return a.printer.Table([]string{"", "ID", "Title", "Feed", "Published"}, rows)
}

func articleFlags(a store.Article) string {
	flags := []rune{' ', ' '}
	if !a.Read {
		flags[0] = '●'
	}
	if a.Starred {
		flags[1] = '★'
	}
	return string(flags)
}

func relativeTime(a store.Article) string {
	if a.Published == nil {
		return "-"
	}
	return humanize.Time(*a.Published)
}

func feedHost(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
