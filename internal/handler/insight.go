package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetInsight godoc
// @Summary      Get model-written commentary for a ticker
// @Description  One-shot market commentary built from the fetched history and headlines; 503 when no API key is configured
// @Tags         insight
// @Produce      json
// @Param        ticker  query  string  false  "Ticker symbol"
// @Param        start   query  string  false  "Start date (YYYY-MM-DD)"
// @Param        end     query  string  false  "End date (YYYY-MM-DD)"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/insight [get]
func (h *Handler) GetInsight(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-insight")
	defer span.End()

	if h.advisorService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "insight service is not configured"})
		return
	}

	q, err := h.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.String("ticker", q.Ticker))

	text, err := h.advisorService.Insight(ctx, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticker": q.Ticker, "insight": text})
}
