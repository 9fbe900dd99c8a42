package advisor

import (
	"fmt"
	"strings"
	"time"

	"tickerlens/internal/domain"
)

const commentaryPhilosophy = `You are a market commentary assistant for an equity dashboard. Your role is to interpret the price history and headlines you are given, NOT to invent data or predict prices.

Rules:
- Always reference the actual numbers in the data block when making observations.
- Never fabricate prices, dates, or headlines. If data is unavailable, say so.
- Describe what the series did (trend, range, last move); do not recommend buying or selling.
- Mention headlines only when they plausibly relate to the ticker or the broader market.
- Keep responses short: three to five sentences, plain prose, no bullet lists.
- If the period covers fewer than two trading days, say the sample is too small to read a trend.`

func BuildSystemPrompt(marketContext string) string {
	var sb strings.Builder
	sb.WriteString(commentaryPhilosophy)
	sb.WriteString("\n\n--- LIVE MARKET DATA (as of ")
	sb.WriteString(time.Now().UTC().Format(time.RFC822))
	sb.WriteString(") ---\n")
	sb.WriteString(marketContext)
	return sb.String()
}

func FormatMarketContext(history *domain.History, news []domain.NewsItem) string {
	var sb strings.Builder

	if history != nil && len(history.Bars) > 0 {
		q := history.Query
		sum := history.Summary
		sb.WriteString(fmt.Sprintf("\n%s, %s to %s, %d trading days:\n",
			q.Ticker, q.Start.Format("2006-01-02"), q.End.Format("2006-01-02"), len(history.Bars)))
		if sum.LastClose.Valid {
			sb.WriteString(fmt.Sprintf("  Last close: %.2f\n", sum.LastClose.Float64))
		}
		if sum.Change.Valid && sum.ChangePct.Valid {
			sb.WriteString(fmt.Sprintf("  Day change: %+.2f (%+.2f%%)\n", sum.Change.Float64, sum.ChangePct.Float64))
		} else {
			sb.WriteString("  Day change: not available (single trading day)\n")
		}
		if sum.PeriodHigh.Valid && sum.PeriodLow.Valid {
			sb.WriteString(fmt.Sprintf("  Period high/low: %.2f / %.2f\n", sum.PeriodHigh.Float64, sum.PeriodLow.Float64))
		}
	} else {
		sb.WriteString("\nPrice history unavailable for this ticker and range.\n")
	}

	if len(news) > 0 {
		sb.WriteString("\nTop Market Headlines:\n")
		for _, item := range news {
			sb.WriteString("  - ")
			sb.WriteString(item.Headline)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
