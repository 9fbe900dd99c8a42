package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tickerlens/internal/advisor"
	"tickerlens/internal/bot"
	"tickerlens/internal/cache"
	"tickerlens/internal/config"
	"tickerlens/internal/handler"
	"tickerlens/internal/job"
	"tickerlens/internal/provider"
	"tickerlens/internal/service"
	"tickerlens/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "tickerlens/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	newYahooProviderFunc = func(tracer trace.Tracer) service.BarProvider {
		return provider.NewYahooProvider(tracer)
	}
	newNewsScraperFunc = func(tracer trace.Tracer) service.HeadlineProvider {
		return provider.NewNewsScraper(tracer)
	}
	newHistoryServiceFunc  = service.NewHistoryService
	newNewsServiceFunc     = service.NewNewsService
	newMarketPollerFunc    = job.NewMarketPoller
	startPollerFunc        = func(p *job.MarketPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Tickerlens API
// @version         1.0
// @description     Stock market dashboard serving daily OHLCV history, summaries and market news.

// @host      localhost:8080
// @BasePath  /api
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Pick the cache backend
	var store cache.Store
	if cfg.CacheBackend == "redis" {
		initRedisFunc(ctx, cfg.RedisURL)
		store = cache.NewRedis(cache.Client)
	} else {
		store = cache.NewMemory()
	}

	// Providers and services
	yahoo := newYahooProviderFunc(tracer)
	scraper := newNewsScraperFunc(tracer)
	historyService := newHistoryServiceFunc(tracer, yahoo, store)
	newsService := newNewsServiceFunc(tracer, scraper, store, cfg.NewsURL)

	// Start warm loops (background goroutines, stopped by ctx cancel)
	poller := newMarketPollerFunc(tracer, historyService, newsService, cfg.DefaultTicker, cfg.NewsPollSecs, cfg.HistoryWarmSecs)
	startPollerFunc(poller, ctx)

	// Advisor is optional; without an API key the insight endpoint answers 503
	var advisorService *advisor.AdvisorService
	if cfg.OpenAIAPIKey != "" {
		llm := advisor.NewOpenAIClient(cfg.OpenAIAPIKey)
		advisorService = advisor.NewAdvisorService(tracer, llm, historyService, newsService, cfg.OpenAIModel)
	}

	// Start Telegram bot
	startTelegramBotFunc(cfg.TelegramBotToken, historyService, newsService, advisorService, cfg.DefaultTicker)

	// Create handlers and routes
	h := newHandlerFunc(tracer, historyService, newsService, cfg.DefaultTicker)
	if advisorService != nil {
		h.SetAdvisorService(advisorService)
	}
	if cfg.APIKey != "" {
		h.SetAPIKey(cfg.APIKey)
	}

	r := newRouterFunc()
	r.Use(otelgin.Middleware("tickerlens"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
