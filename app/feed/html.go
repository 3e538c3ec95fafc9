package feed

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy = bluemonday.StrictPolicy()

	blockBreak  = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6]|blockquote|pre|tr)>`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	inlineSpace = regexp.MustCompile(`[ \t\f\v]+`)
)

// HTMLToText strips markup from feed HTML and keeps paragraph breaks.
func HTMLToText(s string) string {
	s = blockBreak.ReplaceAllStringFunc(s, func(tag string) string {
		if strings.HasPrefix(strings.ToLower(tag), "<br") {
			return tag + "\n"
		}
		return tag + "\n\n"
	})

	text := html.UnescapeString(textPolicy.Sanitize(s))
	text = strings.ReplaceAll(text, "\u00a0", " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}

	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// FirstParagraph returns the first non-empty paragraph of text.
func FirstParagraph(text string) string {
	for _, paragraph := range strings.Split(text, "\n\n") {
		if p := strings.TrimSpace(paragraph); p != "" {
			return p
		}
	}
	return ""
}
