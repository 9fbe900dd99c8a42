package domain

// NewsItem is one scraped headline/link pair. Both fields are non-empty in
// any list a scraper returns; items missing either are skipped at parse time.
type NewsItem struct {
	Headline string `json:"headline"`
	Link     string `json:"link"`
}
