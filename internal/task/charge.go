package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warehouse-sim-backend/internal/apperr"
	"warehouse-sim-backend/internal/equipment"
	"warehouse-sim-backend/internal/eventlog"
)

// ChargingTask charges one unit at a station until its battery is full.
type ChargingTask struct {
	id          string
	env         *Env
	equipmentID string
	station     *equipment.ChargingStation
}

func NewCharging(id string, env *Env, equipmentID string, station *equipment.ChargingStation) *ChargingTask {
	return &ChargingTask{id: id, env: env, equipmentID: equipmentID, station: station}
}

func (t *ChargingTask) ID() string          { return t.id }
func (t *ChargingTask) Kind() Kind          { return KindCharge }
func (t *ChargingTask) EquipmentID() string { return t.equipmentID }

// Run charges in steps. Cancelling ctx ends the run between steps with an
// ErrInterrupted error; the unit is released either way.
func (t *ChargingTask) Run(ctx context.Context) error {
	e, err := t.env.Equipment.RequireByID(t.equipmentID)
	if err != nil {
		return err
	}
	if e.Battery() >= equipment.MaxBattery {
		return fmt.Errorf("%w: %s", equipment.ErrEquipmentChargeFull, e.ID)
	}

	end := t.station.BeginSession()
	defer end()

	if err := t.env.Equipment.SendToCharge(e, t.station); err != nil {
		return err
	}
	defer t.env.Equipment.ReleaseFromCharge(e, t.station)

	step := t.station.StepDuration()
	for {
		if err := t.station.ChargeStep(e); err != nil {
			if errors.Is(err, equipment.ErrEquipmentChargeFull) {
				break
			}
			return err
		}
		if e.Battery() >= equipment.MaxBattery {
			break
		}
		if err := sleep(ctx, step); err != nil {
			t.env.log(fmt.Sprintf("Charging of %s interrupted at %d%%", e.ID, e.Battery()), eventlog.LevelWarn)
			return fmt.Errorf("%w: charging %s: %v", apperr.ErrInterrupted, e.ID, err)
		}
	}
	t.env.log(fmt.Sprintf("Equipment %s fully charged at %s", e.ID, t.station.ID), eventlog.LevelInfo)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
