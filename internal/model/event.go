package model

import "time"

// Event is a persisted log line emitted by a warehouse component.
type Event struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	Level     string    `gorm:"size:8;not null" json:"level"`
	Source    string    `gorm:"size:64;not null;index" json:"source"`
	Message   string    `gorm:"not null" json:"message"`
}
