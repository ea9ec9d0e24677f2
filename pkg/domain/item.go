package domain

import "fmt"

// Kind is the resource kind of a votable item. The string value is the name the
// remote authority uses in its routes.
type Kind string

// enum of resource kinds, KindUnknown is the zero value
const (
	KindUnknown Kind = ""
	KindNews    Kind = "news"
	KindCoin    Kind = "coins"
	KindInsight Kind = "insights"
	KindMeme    Kind = "memes"
)

// Kinds lists all known resource kinds in display order
func Kinds() []Kind {
	return []Kind{KindNews, KindCoin, KindInsight, KindMeme}
}

// ParseKind converts a route name to Kind, returns an error for anything unknown
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return KindUnknown, fmt.Errorf("unknown resource kind %q", s)
	}
	return k, nil
}

// Valid reports whether the kind is one of the known resource kinds
func (k Kind) Valid() bool {
	switch k {
	case KindNews, KindCoin, KindInsight, KindMeme:
		return true
	}
	return false
}

func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return string(k)
}

// Vote is the vote action sent to the authority
type Vote string

// enum of vote actions
const (
	VoteLike    Vote = "like"
	VoteDislike Vote = "dislike"
	VoteClear   Vote = "clear"
)

// ParseVote converts a wire value to Vote
func ParseVote(s string) (Vote, error) {
	v := Vote(s)
	if !v.Valid() {
		return "", fmt.Errorf("invalid vote %q", s)
	}
	return v, nil
}

// Valid reports whether the vote is like, dislike or clear
func (v Vote) Valid() bool {
	return v == VoteLike || v == VoteDislike || v == VoteClear
}

// Tally is the pair of like and dislike counts of an item, both never negative
type Tally struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Item is a votable dashboard entry. Kind is the tag assigned when the item was decoded,
// Fields keeps the object as received from the authority.
type Item struct {
	ID     string
	Kind   Kind
	Tally  Tally
	Fields map[string]any
}

// WithTally returns a copy of the item with the tally replaced
func (it Item) WithTally(t Tally) Item {
	it.Tally = t
	return it
}

// News is the typed view of a news item
type News struct {
	Title   string
	URL     string
	Source  string
	Tickers []string
}

// Coin is the typed view of a coin item
type Coin struct {
	Name        string
	Symbol      string
	CoingeckoID string
}

// Insight is the typed view of a social insight
type Insight struct {
	Title   string
	Text    string
	Tickers []string
	Tags    []string
}

// Meme is the typed view of a meme
type Meme struct {
	Title    string
	ImageURL string
	Source   string
	Tags     []string
}

// News returns the news view, ok is false if the item is not tagged as news
func (it Item) News() (News, bool) {
	if it.Kind != KindNews {
		return News{}, false
	}
	return News{
		Title:   it.str("title"),
		URL:     it.str("url"),
		Source:  it.str("source"),
		Tickers: it.strs("tickers"),
	}, true
}

// Coin returns the coin view, ok is false if the item is not tagged as a coin
func (it Item) Coin() (Coin, bool) {
	if it.Kind != KindCoin {
		return Coin{}, false
	}
	return Coin{Name: it.str("name"), Symbol: it.str("symbol"), CoingeckoID: it.str("coingeckoId")}, true
}

// Insight returns the insight view, ok is false if the item is not tagged as an insight
func (it Item) Insight() (Insight, bool) {
	if it.Kind != KindInsight {
		return Insight{}, false
	}
	return Insight{
		Title:   it.str("title"),
		Text:    it.str("text"),
		Tickers: it.strs("tickers"),
		Tags:    it.strs("tags"),
	}, true
}

// Meme returns the meme view, ok is false if the item is not tagged as a meme
func (it Item) Meme() (Meme, bool) {
	if it.Kind != KindMeme {
		return Meme{}, false
	}
	return Meme{
		Title:    it.str("title"),
		ImageURL: it.str("imageUrl"),
		Source:   it.str("source"),
		Tags:     it.strs("tags"),
	}, true
}

func (it Item) str(key string) string {
	s, _ := it.Fields[key].(string)
	return s
}

// strs collects string elements of an array field, non-strings are skipped
func (it Item) strs(key string) []string {
	var arr []any
	switch v := it.Fields[key].(type) {
	case []string:
		return v
	case []any:
		arr = v
	default:
		return nil
	}
	res := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			res = append(res, s)
		}
	}
	return res
}
