package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func newTestNewsScraper(handler func(*http.Request) (*http.Response, error)) *NewsScraper {
	p := NewNewsScraper(trace.NewNoopTracerProvider().Tracer("test"))
	p.client = &http.Client{Transport: roundTripFunc(handler)}
	return p
}

func storyBlock(headline, href string) string {
	return fmt.Sprintf(`<div class="eachStory"><h3>%s</h3><a href=%q>read</a></div>`, headline, href)
}

func TestNewsScraperCapsAtTenItems(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 1; i <= 15; i++ {
		sb.WriteString(storyBlock(fmt.Sprintf("Story %d", i), fmt.Sprintf("/markets/story-%d", i)))
	}
	sb.WriteString("</body></html>")

	p := newTestNewsScraper(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("User-Agent") != browserUserAgent {
			t.Fatalf("missing browser user agent, got %q", req.Header.Get("User-Agent"))
		}
		return jsonResponse(http.StatusOK, sb.String()), nil
	})

	items, err := p.FetchHeadlines(context.Background(), "http://example/markets/stocks/news")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("expected exactly 10 items, got %d", len(items))
	}
	if items[0].Headline != "Story 1" || items[9].Headline != "Story 10" {
		t.Fatalf("unexpected item order: first=%q last=%q", items[0].Headline, items[9].Headline)
	}
}

func TestNewsScraperSkipsIncompleteBlocks(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<div class="eachStory"><h3>Complete</h3><a href="/markets/a">x</a></div>
		<div class="eachStory"><h3>No link here</h3></div>
		<div class="eachStory"><a href="/markets/no-heading">x</a></div>
		<div class="eachStory"><h3>  Spaced   headline </h3><a href="https://elsewhere.example/b">x</a></div>
	</body></html>`

	p := newTestNewsScraper(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, page), nil
	})

	items, err := p.FetchHeadlines(context.Background(), "http://example/news")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	if items[0].Link != newsBaseOrigin+"/markets/a" {
		t.Fatalf("relative link not resolved: %s", items[0].Link)
	}
	if items[1].Headline != "Spaced headline" {
		t.Fatalf("whitespace not collapsed: %q", items[1].Headline)
	}
	if items[1].Link != "https://elsewhere.example/b" {
		t.Fatalf("absolute link rewritten: %s", items[1].Link)
	}
}

func TestNewsScraperEmptyPage(t *testing.T) {
	t.Parallel()

	p := newTestNewsScraper(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "<html><body><p>redesigned markup</p></body></html>"), nil
	})

	items, err := p.FetchHeadlines(context.Background(), "http://example/news")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestNewsScraperNon200(t *testing.T) {
	t.Parallel()

	p := newTestNewsScraper(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusForbidden, "blocked"), nil
	})

	if _, err := p.FetchHeadlines(context.Background(), "http://example/news"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
