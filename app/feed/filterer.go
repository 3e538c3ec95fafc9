package feed

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/navireader/app/store"
)

var filterFields = map[string]bool{
	"title":       true,
	"description": true,
	"content":     true,
	"author":      true,
	"link":        true,
}

// ValidateFilters checks filter definitions loaded from the config file.
func ValidateFilters(filters []Filter) error {
	for i, filter := range filters {
		if !filterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}
	return nil
}

type Filterer struct {
	filters []Filter
}

func NewFilterer(filters []Filter) *Filterer {
	return &Filterer{filters: filters}
}

// Run returns the articles that pass every filter and the number dropped.
func (f *Filterer) Run(articles []store.Article) ([]store.Article, int) {
	if len(f.filters) == 0 {
		return articles, 0
	}

	kept := make([]store.Article, 0, len(articles))
	for _, article := range articles {
		if filtered, reason := f.applyFilters(article); filtered {
			slog.Debug("Article filtered", "id", article.ID, "reason", reason)
			continue
		}
		kept = append(kept, article)
	}

	return kept, len(articles) - len(kept)
}

func (f *Filterer) applyFilters(article store.Article) (bool, string) {
	for _, filter := range f.filters {
		value := f.getFieldValue(article, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(article store.Article, field string) string {
	switch field {
	case "title":
		return article.Title
	case "description":
		return article.Description
	case "content":
		return article.Content
	case "author":
		return article.Author
	case "link":
		return article.Link
	default:
		return ""
	}
}
