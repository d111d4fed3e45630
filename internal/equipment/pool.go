package equipment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"warehouse-sim-backend/internal/apperr"
	"warehouse-sim-backend/internal/eventlog"
)

const defaultRetryDelay = time.Second

// StationPool hands out free charging stations. Acquire waits until one is
// released or the retry delay passes, then scans again.
type StationPool struct {
	stations   []*ChargingStation
	retryDelay time.Duration
	logger     eventlog.Logger

	mu       sync.Mutex
	released chan struct{}
}

// NewStationPool creates a pool over stations in the given scan order.
func NewStationPool(stations []*ChargingStation, retryDelay time.Duration, logger eventlog.Logger) *StationPool {
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	if logger == nil {
		logger = eventlog.Nop{}
	}
	return &StationPool{
		stations:   stations,
		retryDelay: retryDelay,
		logger:     logger,
		released:   make(chan struct{}),
	}
}

// Stations returns the pooled stations. The slice must not be modified.
func (p *StationPool) Stations() []*ChargingStation {
	return p.stations
}

// Get returns the station with id.
func (p *StationPool) Get(id string) (*ChargingStation, error) {
	for _, s := range p.stations {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStationNotFound, id)
}

// Occupied returns the number of occupied stations.
func (p *StationPool) Occupied() int {
	n := 0
	for _, s := range p.stations {
		if s.IsOccupied() {
			n++
		}
	}
	return n
}

// QueueTime sums the queue time of every station.
func (p *StationPool) QueueTime() time.Duration {
	var total time.Duration
	for _, s := range p.stations {
		total += s.QueueTime()
	}
	return total
}

func (p *StationPool) waitCh() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// Acquire blocks until a station is claimed for equipmentID or ctx is done.
func (p *StationPool) Acquire(ctx context.Context, equipmentID string) (*ChargingStation, error) {
	if len(p.stations) == 0 {
		return nil, fmt.Errorf("%w: no charging stations configured", ErrStationNotFound)
	}
	for {
		// take the channel before scanning so a release during the scan is not missed
		wait := p.waitCh()
		for _, s := range p.stations {
			if s.TryOccupy(equipmentID) {
				p.logger.Log(fmt.Sprintf("Station %s acquired by %s", s.ID, equipmentID), eventlog.LevelDebug, "station")
				return s, nil
			}
		}

		p.logger.Log(fmt.Sprintf("No free station for %s, waiting", equipmentID), eventlog.LevelDebug, "station")
		timer := time.NewTimer(p.retryDelay)
		select {
		case <-wait:
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: waiting for a station for %s: %v", apperr.ErrInterrupted, equipmentID, ctx.Err())
		}
		timer.Stop()
	}
}

// Release vacates s and wakes every waiter.
func (p *StationPool) Release(s *ChargingStation) {
	s.Vacate()
	p.mu.Lock()
	close(p.released)
	p.released = make(chan struct{})
	p.mu.Unlock()
	p.logger.Log(fmt.Sprintf("Station %s released", s.ID), eventlog.LevelDebug, "station")
}
