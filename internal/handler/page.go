package handler

import (
	_ "embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"tickerlens/internal/domain"

	"github.com/gin-gonic/gin"
)

//go:embed page.html
var pageHTML string

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

// Page godoc
// @Summary      Dashboard page
// @Description  Serves the single-page dashboard with the form defaults filled in
// @Tags         dashboard
// @Produce      html
// @Success      200  {string}  string
// @Router       / [get]
func (h *Handler) Page(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.page")
	defer span.End()

	q := domain.DefaultQuery(h.defaultTicker, time.Now())
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(c.Writer, gin.H{
		"Ticker": q.Ticker,
		"Start":  q.Start.Format(dateLayout),
		"End":    q.End.Format(dateLayout),
	})
	if err != nil {
		log.Printf("page render failed: %v", err)
	}
}
