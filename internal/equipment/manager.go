package equipment

import (
	"fmt"
	"sort"
	"sync"

	"warehouse-sim-backend/internal/eventlog"
)

const logSource = "equipment"

// Manager is the registry of units and the owner of their state transitions.
type Manager struct {
	logger eventlog.Logger

	mu    sync.RWMutex
	units map[string]*Equipment
}

// NewManager creates an empty registry.
func NewManager(logger eventlog.Logger) *Manager {
	if logger == nil {
		logger = eventlog.Nop{}
	}
	return &Manager{logger: logger, units: make(map[string]*Equipment)}
}

// Add registers e. Ids are unique.
func (m *Manager) Add(e *Equipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.units[e.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEquipment, e.ID)
	}
	m.units[e.ID] = e
	return nil
}

// Get returns the unit or nil.
func (m *Manager) Get(id string) *Equipment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.units[id]
}

// RequireByID returns the unit or ErrEquipmentNotFound.
func (m *Manager) RequireByID(id string) (*Equipment, error) {
	e := m.Get(id)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrEquipmentNotFound, id)
	}
	return e, nil
}

// AssignToTask moves an IDLE unit to BUSY.
func (m *Manager) AssignToTask(id string) (*Equipment, error) {
	e, err := m.RequireByID(id)
	if err != nil {
		return nil, err
	}
	if !e.transition(StateIdle, StateBusy) {
		return nil, fmt.Errorf("%w: %s is %s", ErrEquipmentUnavailable, id, e.State())
	}
	m.logger.Log(fmt.Sprintf("Equipment %s assigned to task", id), eventlog.LevelDebug, logSource)
	return e, nil
}

// Release returns the unit to IDLE whatever its current state.
func (m *Manager) Release(id string) error {
	e, err := m.RequireByID(id)
	if err != nil {
		return err
	}
	e.setState(StateIdle)
	m.logger.Log(fmt.Sprintf("Equipment %s released", id), eventlog.LevelDebug, logSource)
	return nil
}

// SendToCharge moves an IDLE unit to CHARGING and registers it on station.
func (m *Manager) SendToCharge(e *Equipment, station *ChargingStation) error {
	if !e.transition(StateIdle, StateCharging) {
		return fmt.Errorf("%w: busy equipment cannot start charging: %s is %s", ErrEquipmentUnavailable, e.ID, e.State())
	}
	station.assign(e)
	m.logger.Log(fmt.Sprintf("Equipment %s charging at %s", e.ID, station.ID), eventlog.LevelInfo, logSource)
	return nil
}

// ReleaseFromCharge returns a charging unit to IDLE and clears its charging bookkeeping.
func (m *Manager) ReleaseFromCharge(e *Equipment, station *ChargingStation) {
	station.unassign(e.ID)
	e.mu.Lock()
	e.state = StateIdle
	e.chargingTime = 0
	e.mu.Unlock()
	m.logger.Log(fmt.Sprintf("Equipment %s left %s at %d%%", e.ID, station.ID, e.Battery()), eventlog.LevelInfo, logSource)
}

// List returns every unit sorted by id.
func (m *Manager) List() []*Equipment {
	m.mu.RLock()
	out := make([]*Equipment, 0, len(m.units))
	for _, e := range m.units {
		out = append(out, e)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CountByState returns the number of units per state.
func (m *Manager) CountByState() map[State]int {
	counts := map[State]int{StateIdle: 0, StateBusy: 0, StateCharging: 0}
	for _, e := range m.List() {
		counts[e.State()]++
	}
	return counts
}
