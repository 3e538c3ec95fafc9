package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lysyi3m/navireader/app/feed"
	"github.com/lysyi3m/navireader/app/store"
)

const footerHints = " j/k scroll  g/G top/bottom  s star  o open  n note  q quit "

func renderHeader(article store.Article, width int) string {
	title := article.Title
	if article.Starred {
		title = starStyle.Render("★ ") + title
	}

	var meta []string
	if article.Author != "" {
		meta = append(meta, article.Author)
	}
	if article.Published != nil {
		meta = append(meta, article.Published.Local().Format("Jan 2, 2006 15:04"))
	}

	lines := []string{
		titleStyle.Width(width).Render(title),
		dimStyle.Width(width).Render(article.FeedURL),
	}
	if len(meta) > 0 {
		lines = append(lines, metaStyle.Width(width).Render(strings.Join(meta, " · ")))
	}
	lines = append(lines, dimStyle.Width(width).Render(strings.Repeat("─", max(0, width-2))))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderBody(article store.Article, width int) string {
	text := feed.HTMLToText(article.Content)
	if text == "" {
		text = "(No content available)"
	}

	link := "Link: " + article.Link

	return bodyStyle.Width(width).Render(text + "\n\n" + link)
}

func renderFooter(status string, isError bool, percent float64, width int) string {
	left := fmt.Sprintf(" %3.0f%%", percent*100)
	if status != "" {
		if isError {
			status = errorStyle.Render(status)
		}
		left += "  " + status
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(footerHints)
	if gap < 0 {
		return statusBarStyle.Width(width).Render(left)
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + footerHints)
}
