// Package render turns API payloads into terminal tables. All table
// output goes through here so the CLI and the watch view stay visually
// consistent.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/betbot/gokalshi/internal/classify"
	"github.com/betbot/gokalshi/pkg/journal"
	"github.com/betbot/gokalshi/pkg/kalshi"
	"github.com/betbot/gokalshi/pkg/snapshot"
)

const ladderDepth = 10

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	bidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	askStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	sportsStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	politicsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	quoteStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
)

// Balance renders the account balance block.
func Balance(b *kalshi.Balance) string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("Cash balance:    %s\n", kalshi.FormatCents(b.Balance)))
	s.WriteString(fmt.Sprintf("Portfolio value: %s\n", kalshi.FormatCents(b.PortfolioValue)))
	return s.String()
}

// Markets renders a market table, one colored row per market.
func Markets(ms []kalshi.Market) string {
	if len(ms) == 0 {
		return "no markets\n"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("%-28s │ %-40s │ %-7s │ %-7s │ %-10s │ %-8s │ %s",
		"TICKER", "TITLE", "YES", "NO", "VOLUME", "STATUS", "CATEGORY")))
	s.WriteString("\n")
	s.WriteString(strings.Repeat("─", 118))
	s.WriteString("\n")

	for _, m := range ms {
		cat := classify.Market(m.Ticker, m.Title)
		row := fmt.Sprintf("%-28s │ %-40s │ %-7s │ %-7s │ %-10d │ %-8s │ %s",
			truncate(m.Ticker, 28),
			truncate(m.Title, 40),
			fmt.Sprintf("%d/%d", m.YesBid, m.YesAsk),
			fmt.Sprintf("%d/%d", m.NoBid, m.NoAsk),
			m.Volume,
			m.Status,
			cat)
		s.WriteString(categoryStyle(cat).Render(row))
		s.WriteString("\n")
	}

	s.WriteString(headerStyle.Render(fmt.Sprintf("%d markets", len(ms))))
	s.WriteString("\n")
	return s.String()
}

// Orderbook renders the two ladders side by side with the derived quote
// underneath.
func Orderbook(ticker string, ob *kalshi.Orderbook) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(ticker))
	s.WriteString("\n\n")

	yes := ladderPanel("YES", ob.Yes, bidStyle)
	no := ladderPanel("NO", ob.No, askStyle)
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, yes, "  ", no))
	s.WriteString("\n")
	s.WriteString(QuoteLine(ob.Quote()))
	s.WriteString("\n")
	return s.String()
}

// ladderPanel renders one side of the book, best price on top.
func ladderPanel(title string, levels []kalshi.PriceLevel, style lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(style.Render(title))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%6s  %8s", "PRICE", "COUNT")))
	s.WriteString("\n")

	if len(levels) == 0 {
		s.WriteString("    --\n")
	} else {
		// Ladders arrive ascending; walk backwards so the best bid leads.
		shown := 0
		for i := len(levels) - 1; i >= 0 && shown < ladderDepth; i-- {
			s.WriteString(fmt.Sprintf("%5d¢  %8d\n", levels[i].Price, levels[i].Count))
			shown++
		}
	}

	s.WriteString(headerStyle.Render(fmt.Sprintf("depth %d", kalshi.Depth(levels))))
	return borderStyle.Render(s.String())
}

// QuoteLine renders the derived top of book on one line.
func QuoteLine(q kalshi.Quote) string {
	yes := "--"
	if q.HasYes {
		yes = fmt.Sprintf("%d¢ bid", q.YesBid)
		if q.HasNo {
			yes += fmt.Sprintf(" / %d¢ ask", q.YesAsk)
		}
	}
	no := "--"
	if q.HasNo {
		no = fmt.Sprintf("%d¢ bid", q.NoBid)
		if q.HasYes {
			no += fmt.Sprintf(" / %d¢ ask", q.NoAsk)
		}
	}
	return quoteStyle.Render(fmt.Sprintf("yes %s   no %s", yes, no))
}

// Positions renders the open positions table.
func Positions(ps []kalshi.Position) string {
	if len(ps) == 0 {
		return "no positions\n"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("%-28s │ %8s │ %12s │ %12s │ %10s │ %7s",
		"TICKER", "POSITION", "EXPOSURE", "REALIZED", "FEES", "RESTING")))
	s.WriteString("\n")
	s.WriteString(strings.Repeat("─", 94))
	s.WriteString("\n")

	for _, p := range ps {
		pnl := kalshi.FormatCents(p.RealizedPnl)
		row := fmt.Sprintf("%-28s │ %8d │ %12s │ %12s │ %10s │ %7d",
			truncate(p.Ticker, 28),
			p.Position,
			kalshi.FormatCents(p.MarketExposure),
			pnl,
			kalshi.FormatCents(p.FeesPaid),
			p.RestingOrdersCount)
		if p.RealizedPnl < 0 {
			s.WriteString(askStyle.Render(row))
		} else {
			s.WriteString(row)
		}
		s.WriteString("\n")
	}
	return s.String()
}

// Orders renders the order table.
func Orders(os []kalshi.Order) string {
	if len(os) == 0 {
		return "no orders\n"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("%-15s │ %-28s │ %-6s │ %-4s │ %6s │ %9s │ %-10s",
		"ORDER ID", "TICKER", "ACTION", "SIDE", "PRICE", "REMAINING", "STATUS")))
	s.WriteString("\n")
	s.WriteString(strings.Repeat("─", 98))
	s.WriteString("\n")

	for _, o := range os {
		s.WriteString(fmt.Sprintf("%-15s │ %-28s │ %-6s │ %-4s │ %5d¢ │ %9d │ %-10s\n",
			truncate(o.OrderID, 15),
			truncate(o.Ticker, 28),
			o.Action,
			o.Side,
			orderPrice(o),
			o.RemainingCount,
			o.Status))
	}
	return s.String()
}

// Snapshots renders the stored snapshot listing.
func Snapshots(sums []snapshot.Summary) string {
	if len(sums) == 0 {
		return "no snapshots\n"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("%-32s │ %-20s │ %-8s │ %7s",
		"ID", "TAKEN", "STATUS", "MARKETS")))
	s.WriteString("\n")
	s.WriteString(strings.Repeat("─", 78))
	s.WriteString("\n")

	for _, sum := range sums {
		s.WriteString(fmt.Sprintf("%-32s │ %-20s │ %-8s │ %7d\n",
			truncate(sum.ID, 32),
			sum.TakenAt.Local().Format("2006-01-02 15:04:05"),
			sum.Status,
			sum.Count))
	}
	return s.String()
}

// Journal renders recent order journal entries, newest first.
func Journal(entries []journal.Entry) string {
	if len(entries) == 0 {
		return "journal is empty\n"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("%-19s │ %-6s │ %-28s │ %-6s │ %6s │ %5s │ %-10s │ %s",
		"TIME", "KIND", "TICKER", "SIDE", "PRICE", "COUNT", "STATUS", "ORDER ID")))
	s.WriteString("\n")
	s.WriteString(strings.Repeat("─", 118))
	s.WriteString("\n")

	for _, e := range entries {
		price := "--"
		if e.PriceCents > 0 {
			price = fmt.Sprintf("%d¢", e.PriceCents)
		}
		s.WriteString(fmt.Sprintf("%-19s │ %-6s │ %-28s │ %-6s │ %6s │ %5d │ %-10s │ %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Kind,
			truncate(e.Ticker, 28),
			e.Side,
			price,
			e.Count,
			e.Status,
			truncate(e.OrderID, 15)))
	}
	return s.String()
}

func categoryStyle(c classify.Category) lipgloss.Style {
	switch c {
	case classify.Sports:
		return sportsStyle
	case classify.Politics:
		return politicsStyle
	default:
		return lipgloss.NewStyle()
	}
}

// orderPrice picks whichever price side the order carries.
func orderPrice(o kalshi.Order) int {
	if o.Side == "no" {
		return o.NoPrice
	}
	return o.YesPrice
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// Timestamp formats a journal or snapshot time for single-line output.
func Timestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
