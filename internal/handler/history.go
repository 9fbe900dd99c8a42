package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"tickerlens/internal/domain"
	"tickerlens/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const dateLayout = "2006-01-02"

// parseQuery reads ticker/start/end from the request, falling back to the
// default ticker and the trailing year when omitted.
func (h *Handler) parseQuery(c *gin.Context) (domain.Query, error) {
	ticker := c.DefaultQuery("ticker", h.defaultTicker)

	now := time.Now().UTC().Truncate(24 * time.Hour)
	start := now.AddDate(0, 0, -domain.DefaultLookbackDays)
	end := now

	if v := c.Query("start"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return domain.Query{}, fmt.Errorf("invalid start date %q, want YYYY-MM-DD", v)
		}
		start = parsed
	}
	if v := c.Query("end"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return domain.Query{}, fmt.Errorf("invalid end date %q, want YYYY-MM-DD", v)
		}
		end = parsed
	}

	q := domain.NewQuery(ticker, start, end)
	if err := q.Validate(); err != nil {
		return domain.Query{}, err
	}
	return q, nil
}

func (h *Handler) fetchHistory(c *gin.Context, span trace.Span) (*domain.History, bool) {
	q, err := h.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	span.SetAttributes(attribute.String("ticker", q.Ticker))

	history, err := h.historyService.GetHistory(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, service.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return history, true
}

// GetHistory godoc
// @Summary      Get cleaned daily OHLCV history for a ticker
// @Description  Returns the cleaned bar series (ascending by date) for the ticker over [start, end)
// @Tags         history
// @Produce      json
// @Param        ticker  query  string  false  "Ticker symbol (e.g., RELIANCE.NS)"
// @Param        start   query  string  false  "Start date (YYYY-MM-DD, default one year back)"
// @Param        end     query  string  false  "End date (YYYY-MM-DD, default today)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	history, ok := h.fetchHistory(c, span)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": history.Query,
		"bars":  history.Bars,
	})
}

// GetSummary godoc
// @Summary      Get summary metrics for a ticker
// @Description  Last close, day-over-day change, and period high/low; metrics that cannot be computed are null
// @Tags         history
// @Produce      json
// @Param        ticker  query  string  false  "Ticker symbol"
// @Param        start   query  string  false  "Start date (YYYY-MM-DD)"
// @Param        end     query  string  false  "End date (YYYY-MM-DD)"
// @Success      200  {object}  domain.Summary
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/summary [get]
func (h *Handler) GetSummary(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-summary")
	defer span.End()

	history, ok := h.fetchHistory(c, span)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, history.Summary)
}
