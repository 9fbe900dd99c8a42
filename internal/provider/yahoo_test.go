package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestYahooProvider(handler func(*http.Request) (*http.Response, error)) *YahooProvider {
	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "http://example"
	p.client = &http.Client{Transport: roundTripFunc(handler)}
	p.limiter = NewRateLimiter(10, time.Millisecond)
	return p
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func TestYahooFetchDailyBars(t *testing.T) {
	t.Parallel()

	const body = `{"chart":{"result":[{
		"timestamp":[1735776000,1735862400,1735948800],
		"indicators":{"quote":[{
			"open":[100.0,null,94.0],
			"high":[110.0,108.0,99.0],
			"low":[95.0,101.0,90.0],
			"close":[105.0,104.5,95.0],
			"volume":[1000,null,3000]
		}]}
	}],"error":null}}`

	var gotURL string
	p := newTestYahooProvider(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		if req.Header.Get("User-Agent") != browserUserAgent {
			t.Fatalf("missing browser user agent, got %q", req.Header.Get("User-Agent"))
		}
		return jsonResponse(http.StatusOK, body), nil
	})

	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	bars, err := p.FetchDailyBars(context.Background(), "ABC", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotURL, "/v8/finance/chart/ABC") ||
		!strings.Contains(gotURL, "period1=1735776000") ||
		!strings.Contains(gotURL, "period2=1736035200") ||
		!strings.Contains(gotURL, "interval=1d") {
		t.Fatalf("unexpected request url: %s", gotURL)
	}

	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if !bars[0].Date.Equal(start) {
		t.Fatalf("unexpected first date: %v", bars[0].Date)
	}
	if bars[1].Date.Before(bars[0].Date) || bars[2].Date.Before(bars[1].Date) {
		t.Fatalf("bars not ascending by date: %+v", bars)
	}
	if bars[1].Open.Valid {
		t.Fatal("null open slot should decode as invalid")
	}
	if !bars[1].Close.Valid || bars[1].Close.Float64 != 104.5 {
		t.Fatalf("unexpected second close: %+v", bars[1].Close)
	}
	if bars[1].Volume.Valid {
		t.Fatal("null volume slot should decode as invalid")
	}
	if bars[2].Volume.Int64 != 3000 {
		t.Fatalf("unexpected third volume: %+v", bars[2].Volume)
	}
}

func TestYahooFetchDailyBarsUnknownTicker(t *testing.T) {
	t.Parallel()

	const body = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	p := newTestYahooProvider(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, body), nil
	})

	bars, err := p.FetchDailyBars(context.Background(), "NOPE", time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("unknown ticker must be empty, not an error: %v", err)
	}
	if len(bars) != 0 {
		t.Fatalf("expected no bars, got %d", len(bars))
	}
}

func TestYahooFetchDailyBarsEmptyRange(t *testing.T) {
	t.Parallel()

	const body = `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`
	p := newTestYahooProvider(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, body), nil
	})

	bars, err := p.FetchDailyBars(context.Background(), "ABC", time.Now(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 0 {
		t.Fatalf("expected no bars, got %d", len(bars))
	}
}

func TestYahooFetchDailyBarsServerError(t *testing.T) {
	t.Parallel()

	p := newTestYahooProvider(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, "upstream exploded"), nil
	})

	if _, err := p.FetchDailyBars(context.Background(), "ABC", time.Now().AddDate(0, 0, -7), time.Now()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestYahooFetchDailyBarsUndecodableBody(t *testing.T) {
	t.Parallel()

	p := newTestYahooProvider(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "<html>not json</html>"), nil
	})

	if _, err := p.FetchDailyBars(context.Background(), "ABC", time.Now().AddDate(0, 0, -7), time.Now()); err == nil {
		t.Fatal("expected error for undecodable body")
	}
}
