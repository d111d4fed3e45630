package warehouse

import (
	"context"
	"fmt"

	"warehouse-sim-backend/internal/apperr"
	"warehouse-sim-backend/internal/equipment"
	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/task"
)

// TaskRequest describes one task of a batch. Positions are "(x,y,z)" strings.
type TaskRequest struct {
	Type        string `json:"type" binding:"required"`
	ItemID      string `json:"item_id,omitempty"`
	Position    string `json:"position,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	EquipmentID string `json:"equipment_id,omitempty"`
}

// NewTask turns a request into a runnable task.
func (w *Warehouse) NewTask(id string, req TaskRequest) (task.Task, error) {
	if req.EquipmentID != "" {
		if _, err := w.equipment.RequireByID(req.EquipmentID); err != nil {
			return nil, err
		}
	}

	switch task.Kind(req.Type) {
	case task.KindStoreAuto:
		item, err := w.requireItem(req.ItemID)
		if err != nil {
			return nil, err
		}
		return task.NewStoreAuto(id, w.env, item, req.EquipmentID), nil

	case task.KindStoreManual:
		item, err := w.requireItem(req.ItemID)
		if err != nil {
			return nil, err
		}
		pos, err := parsePositionField("position", req.Position)
		if err != nil {
			return nil, err
		}
		return task.NewStoreManual(id, w.env, item, pos, req.EquipmentID), nil

	case task.KindRetrieve:
		pos, err := parsePositionField("position", req.Position)
		if err != nil {
			return nil, err
		}
		return task.NewRetrieve(id, w.env, pos, req.EquipmentID), nil

	case task.KindMove:
		from, err := parsePositionField("from", req.From)
		if err != nil {
			return nil, err
		}
		to, err := parsePositionField("to", req.To)
		if err != nil {
			return nil, err
		}
		return task.NewMove(id, w.env, from, to, req.EquipmentID), nil

	case task.KindCharge:
		if req.EquipmentID == "" {
			return nil, fmt.Errorf("%w: charge requires equipment_id", apperr.ErrInvalidRequest)
		}
		return &chargeTask{id: id, w: w, equipmentID: req.EquipmentID}, nil

	default:
		return nil, fmt.Errorf("%w: unknown task type %q", apperr.ErrInvalidRequest, req.Type)
	}
}

func (w *Warehouse) requireItem(id string) (*model.Item, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: item_id is required", apperr.ErrInvalidRequest)
	}
	item := w.Item(id)
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

// chargeTask waits for a free station, charges there and always gives the station back.
type chargeTask struct {
	id          string
	w           *Warehouse
	equipmentID string
}

func (t *chargeTask) ID() string          { return t.id }
func (t *chargeTask) Kind() task.Kind     { return task.KindCharge }
func (t *chargeTask) EquipmentID() string { return t.equipmentID }

func (t *chargeTask) Run(ctx context.Context) error {
	e, err := t.w.equipment.RequireByID(t.equipmentID)
	if err != nil {
		return err
	}
	// a full unit never takes a station
	if e.Battery() >= equipment.MaxBattery {
		return fmt.Errorf("%w: %s", equipment.ErrEquipmentChargeFull, e.ID)
	}

	station, err := t.w.stations.Acquire(ctx, t.equipmentID)
	if err != nil {
		return err
	}
	defer t.w.stations.Release(station)

	return task.NewCharging(t.id, t.w.env, t.equipmentID, station).Run(ctx)
}
