// Package equipment holds the warehouse fleet, its availability state machine
// and the charging stations.
package equipment

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"warehouse-sim-backend/internal/model"
)

// Kind is the type of a piece of equipment.
type Kind string

const (
	KindAGV     Kind = "AGV"
	KindShuttle Kind = "SHUTTLE"
	KindCrane   Kind = "CRANE"
)

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case KindAGV, KindShuttle, KindCrane:
		return k, nil
	default:
		return "", fmt.Errorf("unknown equipment kind %q", s)
	}
}

// State is the availability state of a unit.
type State string

const (
	StateIdle     State = "IDLE"
	StateBusy     State = "BUSY"
	StateCharging State = "CHARGING"
)

const (
	MaxBattery    = 100
	ChargePerStep = 10
)

// Equipment is one AGV, shuttle or crane. All mutable fields are guarded by mu.
type Equipment struct {
	ID       string
	Kind     Kind
	Speed    float64
	Capacity float64

	mu           sync.Mutex
	position     model.Position
	battery      int
	state        State
	chargingTime time.Duration

	// chargeMu serializes charge increments for this unit.
	chargeMu sync.Mutex
}

// New creates an IDLE unit. battery is clamped to [0,100].
func New(id string, kind Kind, pos model.Position, speed float64, battery int, capacity float64) *Equipment {
	return &Equipment{
		ID:       id,
		Kind:     kind,
		Speed:    speed,
		Capacity: capacity,
		position: pos,
		battery:  clampBattery(battery),
		state:    StateIdle,
	}
}

func clampBattery(b int) int {
	if b < 0 {
		return 0
	}
	if b > MaxBattery {
		return MaxBattery
	}
	return b
}

func (e *Equipment) Battery() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.battery
}

func (e *Equipment) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Equipment) Position() model.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// MoveTo updates the unit's position.
func (e *Equipment) MoveTo(pos model.Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = pos
}

// ChargingTime is the expected remaining charge time recorded by the last step.
func (e *Equipment) ChargingTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chargingTime
}

// IsAvailable reports whether the unit is IDLE.
func (e *Equipment) IsAvailable() bool {
	return e.State() == StateIdle
}

func (e *Equipment) transition(from, to State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != from {
		return false
	}
	e.state = to
	return true
}

func (e *Equipment) setState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

// View is a point-in-time copy of a unit.
type View struct {
	ID           string         `json:"id"`
	Kind         Kind           `json:"kind"`
	State        State          `json:"state"`
	Battery      int            `json:"battery"`
	Position     model.Position `json:"position"`
	Speed        float64        `json:"speed"`
	Capacity     float64        `json:"capacity"`
	ChargingTime float64        `json:"charging_time_seconds"`
}

func (e *Equipment) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return View{
		ID:           e.ID,
		Kind:         e.Kind,
		State:        e.state,
		Battery:      e.battery,
		Position:     e.position,
		Speed:        e.Speed,
		Capacity:     e.Capacity,
		ChargingTime: e.chargingTime.Seconds(),
	}
}
