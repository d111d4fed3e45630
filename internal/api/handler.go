package api

import (
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"warehouse-sim-backend/internal/apperr"
	"warehouse-sim-backend/internal/store"
	"warehouse-sim-backend/internal/warehouse"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	warehouse *warehouse.Warehouse
	store     store.Store
	webpush   *webpush.Options
}

// NewHandler creates a new API handler. s may be nil when persistence is off.
func NewHandler(w *warehouse.Warehouse, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		warehouse: w,
		store:     s,
		webpush:   webpushOptions,
	}
}

// abortWithError answers with the status mapped from err's kind.
func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}

func (h *Handler) requireStore(c *gin.Context) bool {
	if h.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "persistence is not configured"})
		return false
	}
	return true
}
