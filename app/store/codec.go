package store

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

const (
	frontmatterDelimiter = "---"
	readOriginalPrefix   = "[Read original]("
)

// headerFields is the fixed set of frontmatter keys the decoder understands.
// Keys missing from this table are ignored so that files written by newer
// versions (or edited by hand) still decode.
var headerFields = map[string]func(a *Article, value string){
	"id":     func(a *Article, v string) { a.ID = v },
	"feed":   func(a *Article, v string) { a.FeedURL = v },
	"title":  func(a *Article, v string) { a.Title = v },
	"link":   func(a *Article, v string) { a.Link = v },
	"author": func(a *Article, v string) { a.Author = v },
	"date": func(a *Article, v string) {
		a.Published = nil
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			t = t.UTC()
			a.Published = &t
		}
	},
	"read":    func(a *Article, v string) { a.Read = v == "true" },
	"starred": func(a *Article, v string) { a.Starred = v == "true" },
}

// Encode renders an article as a frontmatter header followed by a markdown body.
func Encode(a Article) []byte {
	var buf bytes.Buffer

	title := singleLine(a.Title)

	buf.WriteString(frontmatterDelimiter + "\n")
	writeHeaderLine(&buf, "id", a.ID)
	writeHeaderLine(&buf, "feed", a.FeedURL)
	writeHeaderLine(&buf, "title", title)
	writeHeaderLine(&buf, "link", a.Link)
	writeHeaderLine(&buf, "author", a.Author)
	date := ""
	if a.Published != nil {
		date = a.Published.UTC().Format(time.RFC3339)
	}
	writeHeaderLine(&buf, "date", date)
	writeHeaderLine(&buf, string(FieldRead), strconv.FormatBool(a.Read))
	writeHeaderLine(&buf, string(FieldStarred), strconv.FormatBool(a.Starred))
	buf.WriteString(frontmatterDelimiter + "\n")

	buf.WriteString("\n# " + title + "\n\n")
	for _, block := range []string{a.Description, a.Content} {
		if strings.TrimSpace(block) == "" {
			continue
		}
		buf.WriteString(block)
		buf.WriteString("\n\n")
	}
	buf.WriteString(readOriginalPrefix + a.Link + ")\n")

	return buf.Bytes()
}

// Decode parses an encoded article. The document is split on the first two
// delimiter lines into (prefix, header, body); further delimiter lines belong
// to the body. Description and content come back folded into Content.
func Decode(data []byte) (Article, error) {
	text := string(data)

	headerStart, headerEnd, bodyStart, ok := frontmatterBounds(text)
	if !ok {
		return Article{}, ErrMalformedFrontmatter
	}

	var a Article
	for _, line := range strings.Split(text[headerStart:headerEnd], "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		decode, known := headerFields[strings.TrimSpace(key)]
		if !known {
			continue
		}
		decode(&a, strings.TrimSpace(value))
	}

	a.Body = text[bodyStart:]
	a.Content = bodyContent(a.Body)

	return a, nil
}

// frontmatterBounds locates the header section. text[headerStart:headerEnd]
// holds the header lines and the body starts at bodyStart, right after the
// closing delimiter line. Blank lines (and a BOM) may precede the opening one.
func frontmatterBounds(text string) (headerStart, headerEnd, bodyStart int, ok bool) {
	opened := false
	pos := 0
	for pos < len(text) {
		end, next := lineAt(text, pos)
		line := strings.TrimSpace(strings.TrimPrefix(text[pos:end], "\ufeff"))

		if !opened {
			if line != "" {
				if line != frontmatterDelimiter {
					return 0, 0, 0, false
				}
				opened = true
				headerStart = next
			}
		} else if line == frontmatterDelimiter {
			return headerStart, pos, next, true
		}

		pos = next
	}

	return 0, 0, 0, false
}

func lineAt(text string, pos int) (end, next int) {
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		return pos + i, pos + i + 1
	}
	return len(text), len(text)
}

// patchHeaderField rewrites every header line for key and leaves all other
// bytes of the document untouched. A missing line is appended to the header.
func patchHeaderField(text, key, value string) (string, error) {
	headerStart, headerEnd, _, ok := frontmatterBounds(text)
	if !ok {
		return "", ErrMalformedFrontmatter
	}

	var b strings.Builder
	b.Grow(len(text) + len(key) + len(value) + 3)
	b.WriteString(text[:headerStart])

	replaced := false
	for _, line := range strings.SplitAfter(text[headerStart:headerEnd], "\n") {
		if line == "" {
			continue
		}
		if k, _, found := strings.Cut(line, ":"); found && strings.TrimSpace(k) == key {
			b.WriteString(key + ": " + value)
			if strings.HasSuffix(line, "\r\n") {
				b.WriteString("\r")
			}
			b.WriteString("\n")
			replaced = true
			continue
		}
		b.WriteString(line)
	}
	if !replaced {
		b.WriteString(key + ": " + value + "\n")
	}

	b.WriteString(text[headerEnd:])
	return b.String(), nil
}

// bodyContent returns the text between the title heading and the trailing
// "Read original" link, trimmed.
func bodyContent(body string) string {
	lines := strings.Split(body, "\n")

	start := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") || trimmed == "#" {
			start = i + 1
		}
		break
	}

	end := len(lines)
	for i := len(lines) - 1; i >= start; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, readOriginalPrefix) {
			end = i
		}
		break
	}

	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

func writeHeaderLine(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key + ": " + singleLine(value) + "\n")
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
