package storage

import "warehouse-sim-backend/internal/apperr"

var (
	ErrCellNotFound = apperr.Kinded(apperr.ErrNotFound, "cell not found")
	ErrCellLocked   = apperr.Kinded(apperr.ErrUnavailable, "cell is locked")
	ErrCellEmpty    = apperr.Kinded(apperr.ErrConflict, "cell is empty")
	ErrCellOccupied = apperr.Kinded(apperr.ErrConflict, "cell is already occupied")
	ErrStorageFull  = apperr.Kinded(apperr.ErrUnavailable, "storage is full")
)
