package service

import (
	"context"
	"encoding/json"
	"log"

	"tickerlens/internal/cache"
	"tickerlens/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const newsCacheTTL = historyCacheTTL

// HeadlineProvider scrapes headline/link pairs from a news page.
type HeadlineProvider interface {
	FetchHeadlines(ctx context.Context, pageURL string) ([]domain.NewsItem, error)
}

// NewsService serves the scraped headline list, cached per URL for an hour.
// It fails closed: any scrape or cache failure yields an empty list, never
// an error, so the news panel can always render.
type NewsService struct {
	tracer   trace.Tracer
	provider HeadlineProvider
	store    cache.Store
	url      string
}

func NewNewsService(tracer trace.Tracer, provider HeadlineProvider, store cache.Store, url string) *NewsService {
	return &NewsService{
		tracer:   tracer,
		provider: provider,
		store:    store,
		url:      url,
	}
}

// GetNews returns the current headlines, possibly empty.
func (s *NewsService) GetNews(ctx context.Context) []domain.NewsItem {
	ctx, span := s.tracer.Start(ctx, "news-service.get-news")
	defer span.End()

	key := "news:" + s.url
	if s.store != nil {
		data, found, err := s.store.Get(ctx, key)
		if err != nil {
			log.Printf("news cache read error: %v", err)
		}
		if found {
			var items []domain.NewsItem
			if err := json.Unmarshal(data, &items); err == nil {
				return items
			}
		}
	}

	items, err := s.provider.FetchHeadlines(ctx, s.url)
	if err != nil {
		span.RecordError(err)
		log.Printf("news scrape failed for %s: %v", s.url, err)
		return []domain.NewsItem{}
	}

	// Failed scrapes are not cached; only a successful result locks in for
	// the TTL window.
	if s.store != nil {
		if data, err := json.Marshal(items); err == nil {
			if err := s.store.Set(ctx, key, data, newsCacheTTL); err != nil {
				log.Printf("news cache write error: %v", err)
			}
		}
	}

	return items
}
