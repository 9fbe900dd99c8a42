package handler

import (
	"tickerlens/internal/advisor"
	"tickerlens/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer         trace.Tracer
	historyService *service.HistoryService
	newsService    *service.NewsService
	advisorService *advisor.AdvisorService
	defaultTicker  string
	apiKey         string
}

func New(
	tracer trace.Tracer,
	historyService *service.HistoryService,
	newsService *service.NewsService,
	defaultTicker string,
) *Handler {
	return &Handler{
		tracer:         tracer,
		historyService: historyService,
		newsService:    newsService,
		defaultTicker:  defaultTicker,
	}
}

// SetAdvisorService enables the insight endpoint; without it /api/insight
// answers 503.
func (h *Handler) SetAdvisorService(svc *advisor.AdvisorService) {
	h.advisorService = svc
}

// SetAPIKey turns on X-API-Key auth for the /api group.
func (h *Handler) SetAPIKey(key string) {
	h.apiKey = key
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Page)
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(h.apiKey))
	api.GET("/history", h.GetHistory)
	api.GET("/history.csv", h.ExportCSV)
	api.GET("/summary", h.GetSummary)
	api.GET("/news", h.GetNews)
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/insight", h.GetInsight)
}
