package feed

import (
	"time"

	"github.com/lysyi3m/navireader/app/store"
)

// Feed is one fetched and normalized feed document.
type Feed struct {
	URL         string
	Title       string
	Description string
	FetchedAt   time.Time
	Items       []store.Article

	Filtered int // Items dropped by filters, not part of Items
}

// Filter configuration types

type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
