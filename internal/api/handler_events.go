package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetEvents handles GET /api/events?source=&limit=.
func (h *Handler) GetEvents(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	events, err := h.store.RecentEvents(c.Request.Context(), c.Query("source"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}
