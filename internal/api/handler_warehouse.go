package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warehouse-sim-backend/internal/equipment"
	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/storage"
)

// StorageResponse summarizes the storage grid.
type StorageResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Z           int     `json:"z"`
	Capacity    int     `json:"capacity"`
	Available   int     `json:"available"`
	Occupied    int     `json:"occupied"`
	Locked      int     `json:"locked"`
	Utilization float64 `json:"utilization"`
}

// GetStorage handles GET /api/storage.
func (h *Handler) GetStorage(c *gin.Context) {
	sm := h.warehouse.Storage()
	x, y, z := sm.Storage().Dimensions()
	resp := StorageResponse{ID: h.warehouse.ID, Name: h.warehouse.Name, X: x, Y: y, Z: z, Capacity: sm.Capacity()}
	for _, v := range sm.Cells() {
		if v.ItemID != "" {
			resp.Occupied++
		}
		if v.Locked {
			resp.Locked++
		}
		if v.ItemID == "" && !v.Locked {
			resp.Available++
		}
	}
	if resp.Capacity > 0 {
		resp.Utilization = float64(resp.Occupied) / float64(resp.Capacity)
	}
	c.JSON(http.StatusOK, resp)
}

// GetCells handles GET /api/storage/cells. ?occupied=true keeps only cells holding an item.
func (h *Handler) GetCells(c *gin.Context) {
	cells := h.warehouse.Storage().Cells()
	if c.Query("occupied") == "true" {
		filtered := make([]storage.CellView, 0, len(cells))
		for _, v := range cells {
			if v.ItemID != "" {
				filtered = append(filtered, v)
			}
		}
		cells = filtered
	}
	c.JSON(http.StatusOK, cells)
}

// GetEquipment handles GET /api/equipment.
func (h *Handler) GetEquipment(c *gin.Context) {
	units := h.warehouse.Equipment().List()
	views := make([]equipment.View, 0, len(units))
	for _, e := range units {
		views = append(views, e.View())
	}
	c.JSON(http.StatusOK, views)
}

// GetStations handles GET /api/stations.
func (h *Handler) GetStations(c *gin.Context) {
	stations := h.warehouse.Stations().Stations()
	views := make([]equipment.StationView, 0, len(stations))
	for _, s := range stations {
		views = append(views, s.View())
	}
	c.JSON(http.StatusOK, views)
}

// ItemResponse is one inventory item.
type ItemResponse struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Weight      float64          `json:"weight"`
	Status      model.ItemStatus `json:"status"`
	Position    model.Position   `json:"position"`
}

// GetItems handles GET /api/items.
func (h *Handler) GetItems(c *gin.Context) {
	items := h.warehouse.Items()
	resp := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, ItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Weight:      it.Weight,
			Status:      it.Status(),
			Position:    it.Position(),
		})
	}
	c.JSON(http.StatusOK, resp)
}
