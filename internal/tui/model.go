package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tickerlens/internal/domain"
	"tickerlens/internal/service"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	gainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	linkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
)

// AdvisorQuerier produces commentary for a market-data query.
type AdvisorQuerier interface {
	Insight(ctx context.Context, q domain.Query) (string, error)
}

// Services bundles everything the terminal dashboard needs. Advisor may be
// nil, in which case the insight key is disabled.
type Services struct {
	History       *service.HistoryService
	News          *service.NewsService
	Advisor       AdvisorQuerier
	DefaultTicker string
}

// Messages.
type historyLoadedMsg struct {
	history *domain.History
	err     error
}

type newsLoadedMsg struct {
	items []domain.NewsItem
}

type insightLoadedMsg struct {
	text string
	err  error
}

// AppModel is the bubbletea model behind the SSH dashboard.
type AppModel struct {
	services Services

	input    textinput.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	ticker  string
	history *domain.History
	news    []domain.NewsItem
	insight string
	loading bool
	errMsg  string
}

func NewAppModel(services Services, width, height int) AppModel {
	ti := textinput.New()
	ti.Placeholder = services.DefaultTicker
	ti.CharLimit = 20
	ti.Width = 20

	return AppModel{
		services: services,
		input:    ti,
		width:    width,
		height:   height,
		ticker:   services.DefaultTicker,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.loadTicker(m.ticker)
}

func (m AppModel) loadTicker(ticker string) tea.Cmd {
	history := m.services.History
	news := m.services.News
	q := domain.DefaultQuery(ticker, time.Now())
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			h, err := history.GetHistory(ctx, q)
			return historyLoadedMsg{history: h, err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return newsLoadedMsg{items: news.GetNews(ctx)}
		},
	)
}

func (m AppModel) loadInsight() tea.Cmd {
	advisor := m.services.Advisor
	q := domain.DefaultQuery(m.ticker, time.Now())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		text, err := advisor.Insight(ctx, q)
		return insightLoadedMsg{text: text, err: err}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			switch msg.String() {
			case "enter":
				ticker := strings.TrimSpace(m.input.Value())
				m.input.Blur()
				m.input.SetValue("")
				if ticker == "" {
					return m, nil
				}
				m.ticker = strings.ToUpper(ticker)
				m.insight = ""
				m.errMsg = ""
				m.loading = true
				return m, m.loadTicker(m.ticker)
			case "esc":
				m.input.Blur()
				m.input.SetValue("")
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "t":
			m.input.Focus()
			return m, textinput.Blink
		case "r":
			m.loading = true
			m.errMsg = ""
			return m, m.loadTicker(m.ticker)
		case "i":
			if m.services.Advisor == nil || m.insight == "loading..." {
				return m, nil
			}
			m.insight = "loading..."
			m.refreshContent()
			return m, m.loadInsight()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 3
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshContent()
		return m, nil

	case historyLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.history = nil
			m.errMsg = msg.err.Error()
		} else {
			m.history = msg.history
			m.errMsg = ""
		}
		m.refreshContent()
		return m, nil

	case newsLoadedMsg:
		m.news = msg.items
		m.refreshContent()
		return m, nil

	case insightLoadedMsg:
		if msg.err != nil {
			m.insight = "insight unavailable: " + msg.err.Error()
		} else {
			m.insight = msg.text
		}
		m.refreshContent()
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *AppModel) refreshContent() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m AppModel) renderContent() string {
	var b strings.Builder

	if m.errMsg != "" {
		b.WriteString(errStyle.Render("  " + m.errMsg))
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(dimStyle.Render("  Loading " + m.ticker + "..."))
		b.WriteString("\n")
	} else if m.history != nil {
		renderSummary(&b, m.history)
		b.WriteString("\n")
		renderBars(&b, m.history.Bars)
	}

	if m.insight != "" {
		b.WriteString("\n")
		b.WriteString(headlineStyle.Render("  INSIGHT"))
		b.WriteString("\n")
		for _, line := range strings.Split(m.insight, "\n") {
			b.WriteString("  " + line + "\n")
		}
	}

	if len(m.news) > 0 {
		b.WriteString("\n")
		b.WriteString(headlineStyle.Render("  TOP MARKET NEWS"))
		b.WriteString("\n")
		for _, item := range m.news {
			b.WriteString("  • " + item.Headline + "\n")
			b.WriteString(linkStyle.Render("    "+item.Link) + "\n")
		}
	}

	return b.String()
}

func renderSummary(b *strings.Builder, h *domain.History) {
	sum := h.Summary
	b.WriteString(fmt.Sprintf("  %s  %s to %s  (%d trading days)\n\n",
		h.Query.Ticker,
		h.Query.Start.Format("2006-01-02"),
		h.Query.End.Format("2006-01-02"),
		len(h.Bars)))

	b.WriteString(labelStyle.Render("  Last Close  "))
	b.WriteString(formatNullPrice(sum.LastClose.Valid, sum.LastClose.Float64))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("  Change      "))
	if sum.Change.Valid && sum.ChangePct.Valid {
		text := fmt.Sprintf("%+.2f (%+.2f%%)", sum.Change.Float64, sum.ChangePct.Float64)
		if sum.Change.Float64 >= 0 {
			b.WriteString(gainStyle.Render(text))
		} else {
			b.WriteString(lossStyle.Render(text))
		}
	} else {
		b.WriteString("n/a")
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("  Period High "))
	b.WriteString(formatNullPrice(sum.PeriodHigh.Valid, sum.PeriodHigh.Float64))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("  Period Low  "))
	b.WriteString(formatNullPrice(sum.PeriodLow.Valid, sum.PeriodLow.Float64))
	b.WriteString("\n")
}

// renderBars prints the most recent rows newest first, matching the web
// dashboard's table order.
func renderBars(b *strings.Builder, bars []domain.Bar) {
	const maxRows = 15
	b.WriteString(headlineStyle.Render("  RECENT SESSIONS"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("  %-12s %10s %10s %10s %10s %12s\n",
		"Date", "Open", "High", "Low", "Close", "Volume")))

	shown := 0
	for i := len(bars) - 1; i >= 0 && shown < maxRows; i-- {
		bar := bars[i]
		row := fmt.Sprintf("  %-12s %10s %10s %10s %10s %12s\n",
			bar.Date.Format("2006-01-02"),
			cell(bar.Open.Valid, bar.Open.Float64),
			cell(bar.High.Valid, bar.High.Float64),
			cell(bar.Low.Valid, bar.Low.Float64),
			cell(bar.Close.Valid, bar.Close.Float64),
			volumeCell(bar),
		)
		b.WriteString(row)
		shown++
	}
}

func cell(valid bool, v float64) string {
	if !valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func volumeCell(bar domain.Bar) string {
	if !bar.Volume.Valid {
		return "-"
	}
	return fmt.Sprintf("%d", bar.Volume.Int64)
}

func formatNullPrice(valid bool, v float64) string {
	if !valid {
		return "n/a"
	}
	return fmt.Sprintf("₹%.2f", v)
}

func (m AppModel) View() string {
	header := titleStyle.Render(padOrTrunc(" tickerlens  "+m.ticker+" ", m.width))

	inputLine := ""
	if m.input.Focused() {
		inputLine = "  ticker: " + m.input.View()
	}

	footer := footerStyle.Render(padOrTrunc(" q quit  t ticker  r refresh  i insight  pgup/dn scroll", m.width))

	if !m.ready {
		return header + "\n  Loading...\n" + footer
	}
	if inputLine != "" {
		return header + "\n" + inputLine + "\n" + m.viewport.View() + "\n" + footer
	}
	return header + "\n" + m.viewport.View() + "\n" + footer
}

func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return s
	}
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
