package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetNews godoc
// @Summary      Get top market headlines
// @Description  Returns up to 10 scraped headline/link pairs; an empty list when the scrape fails
// @Tags         news
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	items := h.newsService.GetNews(ctx)
	c.JSON(http.StatusOK, gin.H{"items": items})
}
