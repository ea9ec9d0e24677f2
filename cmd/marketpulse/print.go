package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/umputun/marketpulse/pkg/dashboard"
	"github.com/umputun/marketpulse/pkg/domain"
)

// printDashboard writes all collections with their tallies and the error, if any
func printDashboard(out io.Writer, st dashboard.State) {
	heading := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)

	heading.Fprintln(out, "News")
	for _, it := range st.Collections.News {
		n, _ := it.News()
		line := n.Title
		if n.Source != "" {
			line += dim.Sprintf(" (%s)", n.Source)
		}
		printItem(out, it, line)
	}

	heading.Fprintln(out, "Coins")
	for _, it := range st.Collections.Coins {
		c, _ := it.Coin()
		name := c.Name
		if name == "" {
			name = c.CoingeckoID
		}
		if c.Symbol != "" {
			name += " " + strings.ToUpper(c.Symbol)
		}
		printItem(out, it, name)
	}

	heading.Fprintln(out, "Insights")
	for _, it := range st.Collections.Insights {
		in, _ := it.Insight()
		text := in.Title
		if text == "" {
			text = in.Text
		}
		if len(in.Tickers) > 0 {
			text += dim.Sprintf(" [%s]", strings.Join(in.Tickers, ", "))
		}
		printItem(out, it, text)
	}

	heading.Fprintln(out, "Meme")
	if m := st.Collections.Meme; m != nil {
		meme, _ := m.Meme()
		title := meme.Title
		if title == "" {
			title = meme.ImageURL
		}
		printItem(out, *m, title)
	}

	if st.Error != "" {
		color.New(color.FgHiRed).Fprintf(out, "error: %s\n", st.Error)
	}
}

func printItem(out io.Writer, it domain.Item, text string) {
	tally := color.New(color.FgGreen).Sprintf("+%d", it.Tally.Likes) + "/" +
		color.New(color.FgRed).Sprintf("-%d", it.Tally.Dislikes)
	fmt.Fprintf(out, "  %s %s  %s\n", tally, text, color.New(color.FgHiBlack).Sprint(it.ID))
}
