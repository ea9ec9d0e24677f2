package dashboard

import "github.com/umputun/marketpulse/pkg/domain"

// Collections holds the votable items of the dashboard. News, coins and insights keep the
// order returned by the authority, meme is a single optional item.
type Collections struct {
	News     []domain.Item
	Coins    []domain.Item
	Insights []domain.Item
	Meme     *domain.Item
}

// Loading has a flag per collection, true until its fetch settles
type Loading struct {
	News     bool
	Coins    bool
	Insights bool
	Meme     bool
}

// Any reports whether at least one collection is still loading
func (l Loading) Any() bool {
	return l.News || l.Coins || l.Insights || l.Meme
}

// State is a read-only snapshot of the dashboard
type State struct {
	Collections Collections
	Loading     Loading
	Error       string
}

// reconcile replaces the tally of the item with the given id in the collection of that kind.
// The item is replaced as a whole, returns false if it is not there.
func (c *Collections) reconcile(kind domain.Kind, id string, tally domain.Tally) bool {
	switch kind {
	case domain.KindNews:
		return replaceTally(c.News, id, tally)
	case domain.KindCoin:
		return replaceTally(c.Coins, id, tally)
	case domain.KindInsight:
		return replaceTally(c.Insights, id, tally)
	case domain.KindMeme:
		if c.Meme == nil || c.Meme.ID != id {
			return false
		}
		upd := c.Meme.WithTally(tally)
		c.Meme = &upd
		return true
	}
	return false
}

func replaceTally(items []domain.Item, id string, tally domain.Tally) bool {
	for i := range items {
		if items[i].ID == id {
			items[i] = items[i].WithTally(tally)
			return true
		}
	}
	return false
}

// find looks up an item by id in all collections, news first
func (c *Collections) find(id string) (domain.Item, bool) {
	for _, items := range [][]domain.Item{c.News, c.Coins, c.Insights} {
		for _, it := range items {
			if it.ID == id {
				return it, true
			}
		}
	}
	if c.Meme != nil && c.Meme.ID == id {
		return *c.Meme, true
	}
	return domain.Item{}, false
}

// clone copies the collections so readers don't share slices with the store
func (c *Collections) clone() Collections {
	res := Collections{
		News:     append([]domain.Item(nil), c.News...),
		Coins:    append([]domain.Item(nil), c.Coins...),
		Insights: append([]domain.Item(nil), c.Insights...),
	}
	if c.Meme != nil {
		m := *c.Meme
		res.Meme = &m
	}
	return res
}
