package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/store"
	"warehouse-sim-backend/internal/warehouse"
)

type submitBatchRequest struct {
	Tasks []warehouse.TaskRequest `json:"tasks" binding:"required,min=1,dive"`
}

// SubmitBatch handles POST /api/batches.
func (h *Handler) SubmitBatch(c *gin.Context) {
	var req submitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	batch, err := h.warehouse.SubmitBatch(req.Tasks)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"batch_id": batch.ID, "tasks": len(req.Tasks)})
}

// TaskResultResponse is one task outcome.
type TaskResultResponse struct {
	TaskID      string     `json:"task_id"`
	Kind        string     `json:"kind"`
	EquipmentID string     `json:"equipment_id,omitempty"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// BatchResponse is the state of a batch.
type BatchResponse struct {
	ID      string               `json:"id"`
	Done    bool                 `json:"done"`
	Total   int                  `json:"total"`
	Pending int                  `json:"pending"`
	Failed  int                  `json:"failed"`
	Results []TaskResultResponse `json:"results"`
}

const taskStatusPending = "pending"

// GetBatch handles GET /api/batches/:id. Batches of earlier runs are read from the store.
func (h *Handler) GetBatch(c *gin.Context) {
	id := c.Param("id")

	if batch, ok := h.warehouse.Batch(id); ok {
		summary := batch.Summary()
		resp := BatchResponse{ID: id, Done: summary.Pending == 0, Total: summary.Total, Pending: summary.Pending, Failed: summary.Failed}
		for _, res := range batch.Results() {
			if res.TaskID == "" {
				resp.Results = append(resp.Results, TaskResultResponse{Status: taskStatusPending})
				continue
			}
			rec := store.NewTaskRecord(id, res)
			resp.Results = append(resp.Results, recordResponse(rec))
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	records, err := h.store.ListTaskResults(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}

	resp := BatchResponse{ID: id, Done: true, Total: len(records)}
	for _, rec := range records {
		if rec.Status == model.TaskStatusFailed {
			resp.Failed++
		}
		resp.Results = append(resp.Results, recordResponse(rec))
	}
	c.JSON(http.StatusOK, resp)
}

func recordResponse(rec model.TaskRecord) TaskResultResponse {
	started, finished := rec.StartedAt, rec.FinishedAt
	return TaskResultResponse{
		TaskID:      rec.TaskID,
		Kind:        rec.Kind,
		EquipmentID: rec.EquipmentID,
		Status:      rec.Status,
		Error:       rec.Error,
		StartedAt:   &started,
		FinishedAt:  &finished,
	}
}
