package store

import (
	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/task"
)

// NewTaskRecord converts a worker result into its persisted form.
func NewTaskRecord(batchID string, res task.Result) model.TaskRecord {
	rec := model.TaskRecord{
		TaskID:      res.TaskID,
		BatchID:     batchID,
		Kind:        string(res.Kind),
		EquipmentID: res.EquipmentID,
		Status:      model.TaskStatusCompleted,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
	}
	if res.Err != nil {
		rec.Status = model.TaskStatusFailed
		rec.Error = res.Err.Error()
	}
	return rec
}
