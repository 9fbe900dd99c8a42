package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tickerlens/internal/domain"

	"github.com/guregu/null/v6"
	"go.opentelemetry.io/otel/trace"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// browserUserAgent keeps the upstream sites from serving the bot-blocked
// variant of their responses.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"

// YahooProvider fetches daily OHLCV series from the Yahoo Finance v8 chart API.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewYahooProvider creates a provider rate limited to 2 requests per second.
func NewYahooProvider(tracer trace.Tracer) *YahooProvider {
	return &YahooProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: yahooBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(2, time.Second),
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars returns the daily bars for ticker over [start, end), ordered
// ascending by date. An unknown ticker or a range with no trading days yields
// an empty slice and no error; only transport and decode failures are errors.
func (p *YahooProvider) FetchDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]domain.Bar, error) {
	_, span := p.tracer.Start(ctx, "yahoo.fetch-daily-bars")
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		p.baseURL, ticker, start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Yahoo reports unknown tickers as a JSON error payload (with a 404
	// status), which callers must treat as "no data", not a failure.
	var chart yahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("yahoo API error %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("parse chart for %s: %w", ticker, err)
	}

	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return []domain.Bar{}, nil
		}
		return nil, fmt.Errorf("yahoo chart error for %s: %s: %s",
			ticker, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo API error %d: %s", resp.StatusCode, string(body))
	}

	if len(chart.Chart.Result) == 0 {
		return []domain.Bar{}, nil
	}
	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return []domain.Bar{}, nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]domain.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar := domain.Bar{Date: time.Unix(ts, 0).UTC()}
		if i < len(quote.Open) {
			bar.Open = null.FloatFromPtr(quote.Open[i])
		}
		if i < len(quote.High) {
			bar.High = null.FloatFromPtr(quote.High[i])
		}
		if i < len(quote.Low) {
			bar.Low = null.FloatFromPtr(quote.Low[i])
		}
		if i < len(quote.Close) {
			bar.Close = null.FloatFromPtr(quote.Close[i])
		}
		if i < len(quote.Volume) {
			bar.Volume = null.IntFromPtr(quote.Volume[i])
		}
		bars = append(bars, bar)
	}

	return bars, nil
}
