package job

import (
	"context"
	"errors"
	"log"
	"time"

	"tickerlens/internal/domain"
	"tickerlens/internal/service"

	"go.opentelemetry.io/otel/trace"
)

// HistoryWarmer refreshes the default ticker's series so the first page load
// after startup hits a warm cache.
type HistoryWarmer interface {
	GetHistory(ctx context.Context, q domain.Query) (*domain.History, error)
}

// NewsWarmer refreshes the headline cache.
type NewsWarmer interface {
	GetNews(ctx context.Context) []domain.NewsItem
}

// MarketPoller runs background goroutines that keep the news and
// default-ticker history caches warm. Request handling stays synchronous;
// the poller only writes through the same services, so the cache remains the
// only shared state.
type MarketPoller struct {
	tracer          trace.Tracer
	history         HistoryWarmer
	news            NewsWarmer
	defaultTicker   string
	newsInterval    time.Duration
	historyInterval time.Duration
}

func NewMarketPoller(
	tracer trace.Tracer,
	history HistoryWarmer,
	news NewsWarmer,
	defaultTicker string,
	newsPollSecs, historyWarmSecs int,
) *MarketPoller {
	return &MarketPoller{
		tracer:          tracer,
		history:         history,
		news:            news,
		defaultTicker:   defaultTicker,
		newsInterval:    time.Duration(newsPollSecs) * time.Second,
		historyInterval: time.Duration(historyWarmSecs) * time.Second,
	}
}

// Start launches the warm loops. Blocks until ctx is cancelled.
func (p *MarketPoller) Start(ctx context.Context) {
	log.Println("Market poller starting...")

	go p.pollLoop(ctx, "news-warm", p.newsInterval, func(ctx context.Context) error {
		p.news.GetNews(ctx)
		return nil
	})

	go p.pollLoop(ctx, "history-warm", p.historyInterval, p.warmHistory)

	<-ctx.Done()
	log.Println("Market poller stopped")
}

func (p *MarketPoller) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	// Run immediately on start
	if err := fn(ctx); err != nil {
		log.Printf("poller %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("poller %s error: %v", name, err)
			}
		}
	}
}

func (p *MarketPoller) warmHistory(ctx context.Context) error {
	q := domain.DefaultQuery(p.defaultTicker, time.Now())
	_, err := p.history.GetHistory(ctx, q)
	// A ticker with nothing to serve is not a poller failure.
	if errors.Is(err, service.ErrNoData) {
		return nil
	}
	return err
}
