package model

import "time"

// Snapshot is one sample of the warehouse utilization accessors.
type Snapshot struct {
	ID                int64     `gorm:"primaryKey"`
	ObservedAt        time.Time `gorm:"not null;index"`
	TotalCells        int       `gorm:"not null"`
	AvailableCells    int       `gorm:"not null"`
	IdleEquipment     int       `gorm:"not null"`
	BusyEquipment     int       `gorm:"not null"`
	ChargingEquipment int       `gorm:"not null"`
	OccupiedStations  int       `gorm:"not null"`
	QueueTimeMS       float64   `gorm:"not null"`
}
