package equipment

import "warehouse-sim-backend/internal/apperr"

var (
	ErrEquipmentNotFound    = apperr.Kinded(apperr.ErrNotFound, "equipment not found")
	ErrEquipmentUnavailable = apperr.Kinded(apperr.ErrUnavailable, "equipment unavailable")
	ErrEquipmentChargeFull  = apperr.Kinded(apperr.ErrPrecondition, "equipment battery already full")
	ErrDuplicateEquipment   = apperr.Kinded(apperr.ErrConflict, "equipment id already registered")
	ErrStationNotFound      = apperr.Kinded(apperr.ErrNotFound, "charging station not found")
)
