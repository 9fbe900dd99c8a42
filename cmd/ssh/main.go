package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"tickerlens/internal/advisor"
	"tickerlens/internal/cache"
	"tickerlens/internal/config"
	"tickerlens/internal/provider"
	"tickerlens/internal/service"
	"tickerlens/internal/tui"
	"tickerlens/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
	"go.opentelemetry.io/otel/trace"
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
	newHistoryServiceFunc = service.NewHistoryService
	newNewsServiceFunc    = service.NewNewsService
	newOpenAIClientFunc   = advisor.NewOpenAIClient
	newAdvisorServiceFunc = advisor.NewAdvisorService
	newWishServerFunc     = wish.NewServer
	setupSignalNotify     = ossignal.Notify
	waitForSignalFunc     = func(quit <-chan os.Signal) { <-quit }
)

// allowedFingerprints parses the comma-separated allowlist. An empty list
// means every key is accepted, which suits a public read-only dashboard.
func allowedFingerprints(raw string) map[string]bool {
	allowed := make(map[string]bool)
	for _, fp := range strings.Split(raw, ",") {
		fp = strings.TrimSpace(fp)
		if fp != "" {
			allowed[fp] = true
		}
	}
	return allowed
}

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

	// Create services
	yahoo := newYahooProviderFunc(tracer)
	scraper := newNewsScraperFunc(tracer)
	historyService := newHistoryServiceFunc(tracer, yahoo, store)
	newsService := newNewsServiceFunc(tracer, scraper, store, cfg.NewsURL)

	// Advisor (optional)
	var advisorSvc *advisor.AdvisorService
	if cfg.OpenAIAPIKey != "" {
		llmClient := newOpenAIClientFunc(cfg.OpenAIAPIKey)
		advisorSvc = newAdvisorServiceFunc(tracer, llmClient, historyService, newsService, cfg.OpenAIModel)
		log.Println("SSH insight service enabled")
	}

	allowed := allowedFingerprints(cfg.SSHAuthorizedFingerprints)

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := gossh.FingerprintSHA256(key)
			if len(allowed) > 0 && !allowed[fingerprint] {
				log.Printf("SSH auth denied: fingerprint=%s", fingerprint)
				return false
			}
			log.Printf("SSH auth accepted: user=%s fingerprint=%s", ctx.User(), fingerprint)
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				var advisorQ tui.AdvisorQuerier
				if advisorSvc != nil {
					advisorQ = advisorSvc
				}

				svc := tui.Services{
					History:       historyService,
					News:          newsService,
					Advisor:       advisorQ,
					DefaultTicker: cfg.DefaultTicker,
				}

				pty, _, _ := s.Pty()
				model := tui.NewAppModel(svc, pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
