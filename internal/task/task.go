// Package task defines the units of work run on the worker pool.
package task

import (
	"context"
	"fmt"
	"time"

	"warehouse-sim-backend/internal/apperr"
	"warehouse-sim-backend/internal/equipment"
	"warehouse-sim-backend/internal/eventlog"
	"warehouse-sim-backend/internal/storage"
)

// Kind names a task type. The values double as request types in the API.
type Kind string

const (
	KindStoreAuto   Kind = "store_auto"
	KindStoreManual Kind = "store_manual"
	KindRetrieve    Kind = "retrieve"
	KindMove        Kind = "move"
	KindCharge      Kind = "charge"
)

var ErrItemConflict = apperr.Kinded(apperr.ErrConflict, "item is already being placed or stored")

// Task is a unit of work. Run reports failure through its error; the pool
// turns it into a Result and never stops on it.
type Task interface {
	ID() string
	Kind() Kind
	Run(ctx context.Context) error
}

// Result is the outcome of one task.
type Result struct {
	TaskID      string
	Kind        Kind
	EquipmentID string
	Err         error
	StartedAt   time.Time
	FinishedAt  time.Time
}

// OK reports whether the task succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Duration is the wall time the task ran for.
func (r Result) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

type equipmentBound interface {
	EquipmentID() string
}

// Execute runs t and records its outcome. A panic inside t is captured as an error.
func Execute(ctx context.Context, t Task) (res Result) {
	res = Result{TaskID: t.ID(), Kind: t.Kind(), StartedAt: time.Now()}
	if eb, ok := t.(equipmentBound); ok {
		res.EquipmentID = eb.EquipmentID()
	}
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("task %s panicked: %v", t.ID(), r)
		}
		res.FinishedAt = time.Now()
	}()
	res.Err = t.Run(ctx)
	return res
}

// Env is what the tasks operate on.
type Env struct {
	Storage   *storage.Manager
	Equipment *equipment.Manager
	Logger    eventlog.Logger
	// Transit is the simulated travel time of a placement.
	Transit time.Duration
}

func (e *Env) log(message string, level eventlog.Level) {
	if e.Logger != nil {
		e.Logger.Log(message, level, "task")
	}
}

// withEquipment marks equipmentID busy for the duration of fn. An empty id runs fn directly.
func (e *Env) withEquipment(equipmentID string, fn func() error) error {
	if equipmentID == "" {
		return fn()
	}
	if _, err := e.Equipment.AssignToTask(equipmentID); err != nil {
		return err
	}
	defer func() {
		if err := e.Equipment.Release(equipmentID); err != nil {
			e.log(fmt.Sprintf("Failed to release %s: %v", equipmentID, err), eventlog.LevelError)
		}
	}()
	return fn()
}

// Func adapts a function to Task.
type Func struct {
	TaskID   string
	TaskKind Kind
	Fn       func(ctx context.Context) error
}

func (f Func) ID() string { return f.TaskID }
func (f Func) Kind() Kind { return f.TaskKind }
func (f Func) Run(ctx context.Context) error {
	return f.Fn(ctx)
}
