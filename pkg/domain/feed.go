package domain

// Feed is an RSS/Atom source of news items
type Feed struct {
	URL     string
	Name    string
	Tickers []string // attached to every item of the feed
}
