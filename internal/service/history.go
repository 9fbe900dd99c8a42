package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"tickerlens/internal/cache"
	"tickerlens/internal/domain"

	"github.com/guregu/null/v6"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const historyCacheTTL = time.Hour

// ErrNoData means the provider had nothing for the query, or everything it
// had was dropped by cleaning. Callers surface the message and move on.
var ErrNoData = errors.New("no data found for ticker and date range")

// BarProvider fetches raw daily bars from the market-data source.
type BarProvider interface {
	FetchDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]domain.Bar, error)
}

// HistoryService fetches, cleans, summarizes, and caches OHLCV series.
type HistoryService struct {
	tracer   trace.Tracer
	provider BarProvider
	store    cache.Store
}

func NewHistoryService(tracer trace.Tracer, provider BarProvider, store cache.Store) *HistoryService {
	return &HistoryService{
		tracer:   tracer,
		provider: provider,
		store:    store,
	}
}

// GetHistory returns the cleaned series and summary for q, serving repeated
// identical queries from the cache for an hour. Cache failures are logged
// and the fetch proceeds without them.
func (s *HistoryService) GetHistory(ctx context.Context, q domain.Query) (*domain.History, error) {
	ctx, span := s.tracer.Start(ctx, "history-service.get-history")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", q.Ticker))

	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := q.CacheKey()
	if s.store != nil {
		data, found, err := s.store.Get(ctx, key)
		if err != nil {
			log.Printf("history cache read error: %v", err)
		}
		if found {
			var h domain.History
			if err := json.Unmarshal(data, &h); err == nil {
				return &h, nil
			}
			log.Printf("history cache entry for %s undecodable, refetching", key)
		}
	}

	bars, err := s.provider.FetchDailyBars(ctx, q.Ticker, q.Start, q.End)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch daily bars for %s: %w", q.Ticker, err)
	}

	cleaned := Clean(bars)
	if len(cleaned) == 0 {
		return nil, ErrNoData
	}

	h := &domain.History{
		Query:   q,
		Bars:    cleaned,
		Summary: Summarize(cleaned),
	}

	if s.store != nil {
		data, err := json.Marshal(h)
		if err == nil {
			if err := s.store.Set(ctx, key, data, historyCacheTTL); err != nil {
				log.Printf("history cache write error: %v", err)
			}
		}
	}

	return h, nil
}

// Clean drops bars carrying no price information at all. Bars with a partial
// quote stay; numeric coercion already happened during decoding, where
// non-numeric slots became nulls.
func Clean(bars []domain.Bar) []domain.Bar {
	cleaned := make([]domain.Bar, 0, len(bars))
	for _, b := range bars {
		if b.HasQuote() {
			cleaned = append(cleaned, b)
		}
	}
	return cleaned
}

// Summarize derives the headline metrics from a cleaned series. Change and
// ChangePct stay null unless the last two bars both carry closes; the period
// extremes come from the High/Low columns.
func Summarize(bars []domain.Bar) domain.Summary {
	var sum domain.Summary
	if len(bars) == 0 {
		return sum
	}

	sum.LastClose = bars[len(bars)-1].Close

	if len(bars) > 1 {
		last := bars[len(bars)-1].Close
		prev := bars[len(bars)-2].Close
		if last.Valid && prev.Valid {
			change := last.Float64 - prev.Float64
			sum.Change = null.FloatFrom(change)
			// A zero previous close has no percentage to express.
			if prev.Float64 != 0 {
				sum.ChangePct = null.FloatFrom(change / prev.Float64 * 100)
			}
		}
	}

	for _, b := range bars {
		if b.High.Valid && (!sum.PeriodHigh.Valid || b.High.Float64 > sum.PeriodHigh.Float64) {
			sum.PeriodHigh = b.High
		}
		if b.Low.Valid && (!sum.PeriodLow.Valid || b.Low.Float64 < sum.PeriodLow.Float64) {
			sum.PeriodLow = b.Low
		}
	}

	return sum
}
