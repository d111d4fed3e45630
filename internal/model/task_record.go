package model

import "time"

// TaskRecord is the stored outcome of a task executed by the worker pool.
type TaskRecord struct {
	TaskID      string    `gorm:"primaryKey;size:64" json:"task_id"`
	BatchID     string    `gorm:"size:64;index;not null" json:"batch_id"`
	Kind        string    `gorm:"size:32;not null" json:"kind"`
	EquipmentID string    `gorm:"size:32" json:"equipment_id,omitempty"`
	Status      string    `gorm:"size:16;not null" json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `gorm:"not null" json:"started_at"`
	FinishedAt  time.Time `gorm:"not null" json:"finished_at"`
}

const (
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)
