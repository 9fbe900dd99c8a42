package provider

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"tickerlens/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/trace"
)

const newsBaseOrigin = "https://economictimes.indiatimes.com"

// maxHeadlines bounds how many story blocks a scrape returns.
const maxHeadlines = 10

var whitespaceRun = regexp.MustCompile(`\s+`)

// NewsScraper pulls headline/link pairs out of the markets news page. The
// div.eachStory structure is an implicit contract with that site; a markup
// change yields zero items rather than an error.
type NewsScraper struct {
	client     *http.Client
	tracer     trace.Tracer
	baseOrigin string
}

func NewNewsScraper(tracer trace.Tracer) *NewsScraper {
	return &NewsScraper{
		client:     &http.Client{Timeout: 20 * time.Second},
		tracer:     tracer,
		baseOrigin: newsBaseOrigin,
	}
}

// FetchHeadlines scrapes up to maxHeadlines items from pageURL. Blocks
// missing their heading or link are skipped; relative links are resolved
// against the site origin.
func (p *NewsScraper) FetchHeadlines(ctx context.Context, pageURL string) ([]domain.NewsItem, error) {
	_, span := p.tracer.Start(ctx, "news.fetch-headlines")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news fetch error %d for %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse news page: %w", err)
	}

	items := make([]domain.NewsItem, 0, maxHeadlines)
	doc.Find("div.eachStory").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		headline := cleanText(s.Find("h3").First().Text())
		href, ok := s.Find("a").First().Attr("href")
		href = strings.TrimSpace(href)
		if headline == "" || !ok || href == "" {
			return true
		}
		if strings.HasPrefix(href, "/") {
			href = p.baseOrigin + href
		}
		items = append(items, domain.NewsItem{Headline: headline, Link: href})
		return len(items) < maxHeadlines
	})

	return items, nil
}

func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
