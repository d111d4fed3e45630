package equipment

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"warehouse-sim-backend/internal/model"
)

// ChargingStation charges one unit at a time.
type ChargingStation struct {
	ID       string
	Position model.Position
	PowerKW  float64

	// unit is the simulated duration of one charge step.
	unit time.Duration

	// session is held for the whole of one charging run.
	session sync.Mutex

	mu       sync.Mutex
	occupied bool
	occupant string
	assigned map[string]*Equipment
}

// NewStation creates a free station whose charge steps each take unit.
func NewStation(id string, pos model.Position, powerKW float64, unit time.Duration) *ChargingStation {
	return &ChargingStation{
		ID:       id,
		Position: pos,
		PowerKW:  powerKW,
		unit:     unit,
		assigned: make(map[string]*Equipment),
	}
}

// StepDuration returns the simulated duration of one charge step.
func (s *ChargingStation) StepDuration() time.Duration {
	return s.unit
}

// BeginSession blocks until no other charging run uses the station.
func (s *ChargingStation) BeginSession() (end func()) {
	s.session.Lock()
	return s.session.Unlock
}

// TryOccupy claims the station for equipmentID if it is free.
func (s *ChargingStation) TryOccupy(equipmentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.occupied {
		return false
	}
	s.occupied = true
	s.occupant = equipmentID
	return true
}

// Vacate frees the station.
func (s *ChargingStation) Vacate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.occupied = false
	s.occupant = ""
}

func (s *ChargingStation) IsOccupied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupied
}

func (s *ChargingStation) Occupant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupant
}

func (s *ChargingStation) assign(e *Equipment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assigned[e.ID] = e
}

func (s *ChargingStation) unassign(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assigned, id)
}

// Assigned returns the ids of the units charging here, sorted.
func (s *ChargingStation) Assigned() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.assigned))
	for id := range s.assigned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// QueueTime sums the remaining charge time of the assigned units.
func (s *ChargingStation) QueueTime() time.Duration {
	s.mu.Lock()
	units := make([]*Equipment, 0, len(s.assigned))
	for _, e := range s.assigned {
		units = append(units, e)
	}
	s.mu.Unlock()

	var total time.Duration
	for _, e := range units {
		total += e.ChargingTime()
	}
	return total
}

// ChargeStep adds one increment of charge to e and records the expected
// remaining time before the increment, minus one step.
func (s *ChargingStation) ChargeStep(e *Equipment) error {
	e.chargeMu.Lock()
	defer e.chargeMu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.battery >= MaxBattery {
		return fmt.Errorf("%w: %s", ErrEquipmentChargeFull, e.ID)
	}
	steps := (MaxBattery - e.battery + ChargePerStep - 1) / ChargePerStep
	expected := time.Duration(steps) * s.unit
	e.battery = min(MaxBattery, e.battery+ChargePerStep)
	e.chargingTime = expected - s.unit
	return nil
}

// StationView is a point-in-time copy of a station.
type StationView struct {
	ID        string         `json:"id"`
	Position  model.Position `json:"position"`
	PowerKW   float64        `json:"power_kw"`
	Occupied  bool           `json:"occupied"`
	Occupant  string         `json:"occupant,omitempty"`
	Assigned  []string       `json:"assigned"`
	QueueTime float64        `json:"queue_time_seconds"`
}

func (s *ChargingStation) View() StationView {
	s.mu.Lock()
	v := StationView{ID: s.ID, Position: s.Position, PowerKW: s.PowerKW, Occupied: s.occupied, Occupant: s.occupant}
	s.mu.Unlock()
	v.Assigned = s.Assigned()
	v.QueueTime = s.QueueTime().Seconds()
	return v
}
