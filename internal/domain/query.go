package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLookbackDays is how far back a query reaches when the caller gives
// no explicit start date.
const DefaultLookbackDays = 365

// Query identifies one market-data request: a ticker over the half-open
// date interval [Start, End).
type Query struct {
	Ticker string    `json:"ticker"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// NewQuery normalizes the ticker (trimmed, uppercased) and truncates the
// dates to whole days.
func NewQuery(ticker string, start, end time.Time) Query {
	return Query{
		Ticker: strings.ToUpper(strings.TrimSpace(ticker)),
		Start:  start.UTC().Truncate(24 * time.Hour),
		End:    end.UTC().Truncate(24 * time.Hour),
	}
}

// DefaultQuery builds the trailing-year query ending at now.
func DefaultQuery(ticker string, now time.Time) Query {
	end := now.UTC().Truncate(24 * time.Hour)
	return NewQuery(ticker, end.AddDate(0, 0, -DefaultLookbackDays), end)
}

// Validate reports why the query cannot be served, or nil.
func (q Query) Validate() error {
	if q.Ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	if q.End.Before(q.Start) {
		return fmt.Errorf("end date %s is before start date %s",
			q.End.Format("2006-01-02"), q.Start.Format("2006-01-02"))
	}
	return nil
}

// CacheKey is stable for identical queries so repeats within the cache TTL
// reuse the stored series.
func (q Query) CacheKey() string {
	return fmt.Sprintf("history:%s:%s:%s",
		q.Ticker, q.Start.Format("2006-01-02"), q.End.Format("2006-01-02"))
}
