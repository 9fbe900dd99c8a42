package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tickerlens/internal/cache"
	"tickerlens/internal/domain"
	"tickerlens/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("handler-test")

type stubBarProvider struct {
	bars []domain.Bar
	err  error
}

func (s *stubBarProvider) FetchDailyBars(context.Context, string, time.Time, time.Time) ([]domain.Bar, error) {
	return s.bars, s.err
}

type stubHeadlineProvider struct {
	items []domain.NewsItem
	err   error
}

func (s *stubHeadlineProvider) FetchHeadlines(context.Context, string) ([]domain.NewsItem, error) {
	return s.items, s.err
}

func testBars() []domain.Bar {
	mk := func(d int, open, high, low, close float64, vol int64) domain.Bar {
		return domain.Bar{
			Date:   time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC),
			Open:   null.FloatFrom(open),
			High:   null.FloatFrom(high),
			Low:    null.FloatFrom(low),
			Close:  null.FloatFrom(close),
			Volume: null.IntFrom(vol),
		}
	}
	return []domain.Bar{
		mk(3, 99, 112, 97, 100, 1000),
		mk(4, 101, 109, 100, 105, 1500),
		mk(5, 104, 106, 92, 95, 900),
	}
}

func newTestRouter(bars *stubBarProvider, news *stubHeadlineProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)

	historySvc := service.NewHistoryService(testTracer, bars, cache.NewMemory())
	newsSvc := service.NewNewsService(testTracer, news, cache.NewMemory(), "https://example.com/news")

	h := New(testTracer, historySvc, newsSvc, "RELIANCE.NS")
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetHistoryReturnsBars(t *testing.T) {
	r := newTestRouter(&stubBarProvider{bars: testBars()}, &stubHeadlineProvider{})

	w := get(r, "/api/history?ticker=abc&start=2025-03-01&end=2025-03-10")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Query domain.Query `json:"query"`
		Bars  []domain.Bar `json:"bars"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Query.Ticker != "ABC" {
		t.Fatalf("ticker not uppercased: %q", body.Query.Ticker)
	}
	if len(body.Bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(body.Bars))
	}
}

func TestGetHistoryBadDates(t *testing.T) {
	r := newTestRouter(&stubBarProvider{bars: testBars()}, &stubHeadlineProvider{})

	if w := get(r, "/api/history?start=03-01-2025"); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed date: expected 400, got %d", w.Code)
	}
	if w := get(r, "/api/history?start=2025-03-10&end=2025-03-01"); w.Code != http.StatusBadRequest {
		t.Fatalf("reversed range: expected 400, got %d", w.Code)
	}
}

func TestGetHistoryNoData(t *testing.T) {
	r := newTestRouter(&stubBarProvider{}, &stubHeadlineProvider{})

	w := get(r, "/api/history?ticker=NOPE")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "no data") {
		t.Fatalf("expected no-data message, got %s", w.Body.String())
	}
}

func TestGetHistoryProviderFailure(t *testing.T) {
	r := newTestRouter(&stubBarProvider{err: errors.New("connection refused")}, &stubHeadlineProvider{})

	if w := get(r, "/api/history"); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetSummaryMetrics(t *testing.T) {
	r := newTestRouter(&stubBarProvider{bars: testBars()}, &stubHeadlineProvider{})

	w := get(r, "/api/summary?ticker=ABC&start=2025-03-01&end=2025-03-10")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var sum domain.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if sum.LastClose.Float64 != 95 || sum.Change.Float64 != -10 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.PeriodHigh.Float64 != 112 || sum.PeriodLow.Float64 != 92 {
		t.Fatalf("period extremes must come from High/Low columns: %+v", sum)
	}
}

func TestGetSummarySingleRowNullChange(t *testing.T) {
	r := newTestRouter(&stubBarProvider{bars: testBars()[:1]}, &stubHeadlineProvider{})

	w := get(r, "/api/summary?ticker=ABC&start=2025-03-01&end=2025-03-10")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if raw["change"] != nil || raw["change_pct"] != nil {
		t.Fatalf("single-row change must serialize as null, got %v / %v", raw["change"], raw["change_pct"])
	}
	if raw["last_close"] != 100.0 {
		t.Fatalf("unexpected last close: %v", raw["last_close"])
	}
}

func TestGetNewsEndpoint(t *testing.T) {
	news := &stubHeadlineProvider{items: []domain.NewsItem{
		{Headline: "Markets rally", Link: "https://example.com/a"},
	}}
	r := newTestRouter(&stubBarProvider{bars: testBars()}, news)

	w := get(r, "/api/news")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Items []domain.NewsItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Headline != "Markets rally" {
		t.Fatalf("unexpected items: %+v", body.Items)
	}
}

func TestGetNewsFailureStillOK(t *testing.T) {
	r := newTestRouter(&stubBarProvider{}, &stubHeadlineProvider{err: errors.New("blocked")})

	w := get(r, "/api/news")
	if w.Code != http.StatusOK {
		t.Fatalf("news must never fail the request, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty item list, got %s", w.Body.String())
	}
}

func TestGetDashboardPayload(t *testing.T) {
	news := &stubHeadlineProvider{items: []domain.NewsItem{
		{Headline: "Sensex gains", Link: "https://example.com/b"},
	}}
	r := newTestRouter(&stubBarProvider{bars: testBars()}, news)

	w := get(r, "/api/dashboard?ticker=ABC&start=2025-03-01&end=2025-03-10")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	for _, key := range []string{"query", "bars", "summary", "indicators", "news"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("dashboard payload missing %q", key)
		}
	}
}

func TestExportCSV(t *testing.T) {
	bars := testBars()
	bars[1].Volume = null.Int{}
	r := newTestRouter(&stubBarProvider{bars: bars}, &stubHeadlineProvider{})

	w := get(r, "/api/history.csv?ticker=abc&start=2025-03-01&end=2025-03-10")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=ABC_data.csv" {
		t.Fatalf("unexpected disposition: %q", got)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != len(bars)+1 {
		t.Fatalf("expected header + %d rows, got %d lines", len(bars), len(lines))
	}
	if lines[0] != "Date,Open,High,Low,Close,Volume" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2025-03-05") || !strings.HasPrefix(lines[3], "2025-03-03") {
		t.Fatalf("rows not descending by date: %v", lines[1:])
	}
	if !strings.HasSuffix(lines[2], ",") {
		t.Fatalf("null volume cell should be empty: %q", lines[2])
	}
}

func TestGetInsightUnconfigured(t *testing.T) {
	r := newTestRouter(&stubBarProvider{bars: testBars()}, &stubHeadlineProvider{})

	if w := get(r, "/api/insight?ticker=ABC"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without advisor, got %d", w.Code)
	}
}

func TestPageRendersDefaults(t *testing.T) {
	r := newTestRouter(&stubBarProvider{bars: testBars()}, &stubHeadlineProvider{})

	w := get(r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "RELIANCE.NS") {
		t.Fatal("page missing default ticker")
	}
	if !strings.Contains(body, "plotly") {
		t.Fatal("page missing chart library")
	}
}

// The news panel must load from its own endpoint: headlines still render when
// the market-data fetch answers 4xx/5xx for the chosen ticker.
func TestPageLoadsNewsIndependently(t *testing.T) {
	r := newTestRouter(&stubBarProvider{bars: testBars()}, &stubHeadlineProvider{})

	body := get(r, "/").Body.String()
	if !strings.Contains(body, `fetch("/api/news")`) {
		t.Fatal("page must fetch the news endpoint directly")
	}
	if !strings.Contains(body, "loadNews();") {
		t.Fatal("page must populate the news panel on load, before any data fetch")
	}
}

func TestAPIKeyGuardsAPIGroup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	historySvc := service.NewHistoryService(testTracer, &stubBarProvider{bars: testBars()}, cache.NewMemory())
	newsSvc := service.NewNewsService(testTracer, &stubHeadlineProvider{}, cache.NewMemory(), "https://example.com/news")
	h := New(testTracer, historySvc, newsSvc, "RELIANCE.NS")
	h.SetAPIKey("secret")
	r := gin.New()
	h.RegisterRoutes(r)

	if w := get(r, "/api/news"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	req.Header.Set("X-API-Key", "secret")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", w.Code)
	}

	// The page itself stays public.
	if w := get(r, "/"); w.Code != http.StatusOK {
		t.Fatalf("page must not require the key, got %d", w.Code)
	}
}
