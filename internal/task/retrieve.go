package task

import (
	"context"
	"fmt"
	"sync"

	"warehouse-sim-backend/internal/eventlog"
	"warehouse-sim-backend/internal/model"
)

// RetrieveTask takes the item out of a cell.
type RetrieveTask struct {
	id          string
	env         *Env
	pos         model.Position
	equipmentID string

	mu        sync.Mutex
	retrieved *model.Item
}

func NewRetrieve(id string, env *Env, pos model.Position, equipmentID string) *RetrieveTask {
	return &RetrieveTask{id: id, env: env, pos: pos, equipmentID: equipmentID}
}

func (t *RetrieveTask) ID() string          { return t.id }
func (t *RetrieveTask) Kind() Kind          { return KindRetrieve }
func (t *RetrieveTask) EquipmentID() string { return t.equipmentID }

func (t *RetrieveTask) Run(_ context.Context) error {
	return t.env.withEquipment(t.equipmentID, func() error {
		item, err := t.env.Storage.RetrieveItem(t.pos)
		if err != nil {
			t.env.log(fmt.Sprintf("Failed to retrieve from %s: %v", t.pos, err), eventlog.LevelWarn)
			return err
		}
		t.mu.Lock()
		t.retrieved = item
		t.mu.Unlock()
		return nil
	})
}

// Retrieved returns the item taken out, or nil before a successful run.
func (t *RetrieveTask) Retrieved() *model.Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.retrieved
}

// MoveTask relocates an item between two cells.
type MoveTask struct {
	id          string
	env         *Env
	from, to    model.Position
	equipmentID string
}

func NewMove(id string, env *Env, from, to model.Position, equipmentID string) *MoveTask {
	return &MoveTask{id: id, env: env, from: from, to: to, equipmentID: equipmentID}
}

func (t *MoveTask) ID() string          { return t.id }
func (t *MoveTask) Kind() Kind          { return KindMove }
func (t *MoveTask) EquipmentID() string { return t.equipmentID }

func (t *MoveTask) Run(_ context.Context) error {
	return t.env.withEquipment(t.equipmentID, func() error {
		if err := t.env.Storage.MoveItem(t.from, t.to); err != nil {
			t.env.log(fmt.Sprintf("Failed to move %s to %s: %v", t.from, t.to, err), eventlog.LevelWarn)
			return err
		}
		return nil
	})
}
