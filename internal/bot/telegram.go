package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tickerlens/internal/advisor"
	"tickerlens/internal/domain"
	"tickerlens/internal/service"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(
	token string,
	historyService *service.HistoryService,
	newsService *service.NewsService,
	advisorService *advisor.AdvisorService,
	defaultTicker string,
) {
	if token == "" {
		log.Println("Telegram bot token not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/quote", func(c tele.Context) error {
		args := c.Args()
		ticker := defaultTicker
		if len(args) > 0 {
			ticker = args[0]
		}
		q := domain.DefaultQuery(ticker, time.Now())
		history, err := historyService.GetHistory(context.Background(), q)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching %s: %v", q.Ticker, err))
		}
		return c.Send(formatQuote(history))
	})

	b.Handle("/news", func(c tele.Context) error {
		items := newsService.GetNews(context.Background())
		if len(items) == 0 {
			return c.Send("Could not fetch market news at the moment.")
		}
		var sb strings.Builder
		sb.WriteString("Top Market News\n")
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("\n%s\n%s\n", item.Headline, item.Link))
		}
		return c.Send(sb.String())
	})

	b.Handle("/ask", func(c tele.Context) error {
		if advisorService == nil {
			return c.Send("The insight service is not configured.")
		}
		text := strings.TrimSpace(c.Message().Payload)
		if text == "" {
			return c.Send("Usage: /ask what do you think about RELIANCE.NS?")
		}
		ticker := defaultTicker
		if tickers := advisor.ExtractTickers(text); len(tickers) > 0 {
			ticker = tickers[0]
		}
		reply, err := advisorService.Insight(context.Background(), domain.DefaultQuery(ticker, time.Now()))
		if err != nil {
			return c.Send(fmt.Sprintf("Insight unavailable: %v", err))
		}
		return c.Send(reply)
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func formatQuote(h *domain.History) string {
	sum := h.Summary
	last := "n/a"
	if sum.LastClose.Valid {
		last = fmt.Sprintf("%.2f", sum.LastClose.Float64)
	}
	change := "n/a"
	if sum.Change.Valid && sum.ChangePct.Valid {
		change = fmt.Sprintf("%+.2f (%+.2f%%)", sum.Change.Float64, sum.ChangePct.Float64)
	}
	high := "n/a"
	if sum.PeriodHigh.Valid {
		high = fmt.Sprintf("%.2f", sum.PeriodHigh.Float64)
	}
	low := "n/a"
	if sum.PeriodLow.Valid {
		low = fmt.Sprintf("%.2f", sum.PeriodLow.Float64)
	}
	return fmt.Sprintf(
		"%s\nLast Close: %s\nChange: %s\nPeriod High: %s\nPeriod Low: %s\nTrading Days: %d",
		h.Query.Ticker, last, change, high, low, len(h.Bars),
	)
}
