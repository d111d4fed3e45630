package task

import (
	"context"
	"fmt"
	"time"

	"warehouse-sim-backend/internal/eventlog"
	"warehouse-sim-backend/internal/model"
)

// placement is shared by the auto and manual store tasks.
type placement struct {
	id          string
	env         *Env
	item        *model.Item
	equipmentID string
}

func (p *placement) ID() string          { return p.id }
func (p *placement) EquipmentID() string { return p.equipmentID }

// run claims the item, marks it MOVING, waits out the transit and calls place.
// On failure the item's previous status is restored.
func (p *placement) run(place func() (model.Position, error)) error {
	release := p.item.Claim()
	defer release()

	if s := p.item.Status(); s == model.ItemMoving || s == model.ItemStored {
		return fmt.Errorf("%w: %s is %s", ErrItemConflict, p.item.ID, s)
	}

	return p.env.withEquipment(p.equipmentID, func() error {
		prev := p.item.SetStatus(model.ItemMoving)
		if p.env.Transit > 0 {
			time.Sleep(p.env.Transit)
		}
		pos, err := place()
		if err != nil {
			p.item.SetStatus(prev)
			p.env.log(fmt.Sprintf("Failed to store %s: %v", p.item.ID, err), eventlog.LevelWarn)
			return err
		}
		p.env.log(fmt.Sprintf("Task %s stored %s at %s", p.id, p.item.ID, pos), eventlog.LevelInfo)
		return nil
	})
}

// StoreAutoTask stores an item in the first free cell.
type StoreAutoTask struct {
	placement
	stored model.Position
}

// NewStoreAuto creates a StoreAutoTask. equipmentID may be empty.
func NewStoreAuto(id string, env *Env, item *model.Item, equipmentID string) *StoreAutoTask {
	return &StoreAutoTask{placement: placement{id: id, env: env, item: item, equipmentID: equipmentID}}
}

func (t *StoreAutoTask) Kind() Kind { return KindStoreAuto }

func (t *StoreAutoTask) Run(_ context.Context) error {
	return t.run(func() (model.Position, error) {
		pos, err := t.env.Storage.AddItem(t.item)
		if err == nil {
			t.stored = pos
		}
		return pos, err
	})
}

// StoreManualTask stores an item at a chosen position.
type StoreManualTask struct {
	placement
	target model.Position
}

// NewStoreManual creates a StoreManualTask. equipmentID may be empty.
func NewStoreManual(id string, env *Env, item *model.Item, target model.Position, equipmentID string) *StoreManualTask {
	return &StoreManualTask{
		placement: placement{id: id, env: env, item: item, equipmentID: equipmentID},
		target:    target,
	}
}

func (t *StoreManualTask) Kind() Kind { return KindStoreManual }

func (t *StoreManualTask) Run(_ context.Context) error {
	return t.run(func() (model.Position, error) {
		return t.target, t.env.Storage.AddItemAt(t.item, t.target)
	})
}
