package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
)

// ExportCSV godoc
// @Summary      Download the cleaned history as CSV
// @Description  One row per cleaned bar, descending by date; null cells are empty
// @Tags         history
// @Produce      text/csv
// @Param        ticker  query  string  false  "Ticker symbol"
// @Param        start   query  string  false  "Start date (YYYY-MM-DD)"
// @Param        end     query  string  false  "End date (YYYY-MM-DD)"
// @Success      200  {string}  string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/history.csv [get]
func (h *Handler) ExportCSV(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.export-csv")
	defer span.End()

	history, ok := h.fetchHistory(c, span)
	if !ok {
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume"})

	for i := len(history.Bars) - 1; i >= 0; i-- {
		b := history.Bars[i]
		_ = w.Write([]string{
			b.Date.Format(dateLayout),
			csvFloat(b.Open),
			csvFloat(b.High),
			csvFloat(b.Low),
			csvFloat(b.Close),
			csvInt(b.Volume),
		})
	}
	w.Flush()

	filename := fmt.Sprintf("%s_data.csv", history.Query.Ticker)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func csvFloat(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func csvInt(v null.Int) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
