package handler

import (
	"math"
	"net/http"

	"tickerlens/internal/domain"
	"tickerlens/internal/ta"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
)

// GetDashboard godoc
// @Summary      Get the combined dashboard payload
// @Description  Bars, summary metrics, indicator overlays, and headlines in one response
// @Tags         dashboard
// @Produce      json
// @Param        ticker  query  string  false  "Ticker symbol"
// @Param        start   query  string  false  "Start date (YYYY-MM-DD)"
// @Param        end     query  string  false  "End date (YYYY-MM-DD)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-dashboard")
	defer span.End()

	history, ok := h.fetchHistory(c, span)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":      history.Query,
		"bars":       history.Bars,
		"summary":    history.Summary,
		"indicators": computeIndicators(history.Bars),
		"news":       h.newsService.GetNews(ctx),
	})
}

// computeIndicators derives the chart overlays from the cleaned series. Every
// overlay stays aligned index-for-index with the bars; warm-up slots and
// slots fed by null closes come back null.
func computeIndicators(bars []domain.Bar) domain.IndicatorSet {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		if b.Close.Valid {
			closes[i] = b.Close.Float64
		} else {
			closes[i] = math.NaN()
		}
	}

	var set domain.IndicatorSet
	set.SMA20 = nanToNull(ta.SMASeries(closes, 20))
	set.SMA50 = nanToNull(ta.SMASeries(closes, 50))
	set.RSI14 = nanToNull(ta.RSISeries(closes, 14))

	macd, signal := ta.MACDSeries(closes, 12, 26, 9)
	set.MACD = nanToNull(macd)
	set.MACDSignal = nanToNull(signal)

	middle, upper, lower := ta.BollingerSeries(closes, 20, 2)
	set.BBMiddle = nanToNull(middle)
	set.BBUpper = nanToNull(upper)
	set.BBLower = nanToNull(lower)

	return set
}

func nanToNull(values []float64) []null.Float {
	if values == nil {
		return nil
	}
	out := make([]null.Float, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			out[i] = null.FloatFrom(v)
		}
	}
	return out
}
