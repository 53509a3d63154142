// Package watch is the live orderbook terminal view. It polls one
// market on a fixed tick and redraws the ladders until q or ctrl+c.
package watch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/betbot/gokalshi/internal/render"
	"github.com/betbot/gokalshi/pkg/kalshi"
)

const (
	// DefaultInterval is the poll cadence when the caller passes zero.
	DefaultInterval = 2 * time.Second

	fetchTimeout = 5 * time.Second
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	staleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type model struct {
	client   *kalshi.Client
	ticker   string
	interval time.Duration

	book      *kalshi.Orderbook
	fetchedAt time.Time
	fetchErr  error
}

// tickMsg fires the next poll.
type tickMsg time.Time

// bookMsg carries one fetched orderbook.
type bookMsg struct {
	book *kalshi.Orderbook
	at   time.Time
}

func newModel(client *kalshi.Client, ticker string, interval time.Duration) model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return model{client: client, ticker: ticker, interval: interval}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(fetchCmd(m.client, m.ticker), m.tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tickMsg:
		return m, tea.Batch(fetchCmd(m.client, m.ticker), m.tickCmd())

	case bookMsg:
		m.book = msg.book
		m.fetchedAt = msg.at
		m.fetchErr = nil
		return m, nil

	case error:
		// Keep the last good book on screen and surface the failure.
		m.fetchErr = msg
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	var s strings.Builder

	status := "connecting..."
	if !m.fetchedAt.IsZero() {
		status = fmt.Sprintf("updated %s ago", time.Since(m.fetchedAt).Round(time.Second))
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s │ %s", m.ticker, status)))
	s.WriteString("\n\n")

	if m.fetchErr != nil {
		s.WriteString(errStyle.Render(fmt.Sprintf("fetch failed: %v", m.fetchErr)))
		s.WriteString("\n\n")
	}

	if m.book != nil {
		s.WriteString(render.Orderbook(m.ticker, m.book))
	} else if m.fetchErr == nil {
		s.WriteString("waiting for data...\n")
	}

	if !m.fetchedAt.IsZero() && time.Since(m.fetchedAt) > 3*m.interval {
		s.WriteString(staleStyle.Render("data is stale"))
		s.WriteString("\n")
	}

	s.WriteString("\npress q to quit")
	return s.String()
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchCmd(client *kalshi.Client, ticker string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		book, err := client.GetOrderbook(ctx, ticker)
		if err != nil {
			return err
		}
		return bookMsg{book: book, at: time.Now()}
	}
}

// Run blocks in the alt screen until the user quits or ctx ends.
func Run(ctx context.Context, client *kalshi.Client, ticker string, interval time.Duration) error {
	p := tea.NewProgram(newModel(client, ticker, interval),
		tea.WithAltScreen(),
		tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
