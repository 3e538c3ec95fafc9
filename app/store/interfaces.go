package store

type ArticleRepository interface {
	InsertIfAbsent(a Article) (bool, error)
	GetByID(id string) (*Article, error)
	SetField(id string, field Field, value bool) error
	MarkRead(id string) error
	MarkUnread(id string) error
	ToggleStar(id string) (bool, error)

	ListRecent(limit int) ([]Article, error)
	Search(query string) ([]Article, error)
	CountUnread() (int, error)
	Stats() (Stats, error)
}

type FeedRepository interface {
	SaveFeedMeta(meta FeedMeta) error
	GetFeedMeta(url string) (*FeedMeta, error)
	ListFeedMeta() ([]FeedMeta, error)

	SaveFeedList(urls []string) error
	LoadFeedList() ([]string, error)
}
