// Package monitor samples the warehouse accessors on a fixed interval.
package monitor

import (
	"context"
	"log"
	"time"

	"warehouse-sim-backend/internal/equipment"
	"warehouse-sim-backend/internal/metrics"
	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/warehouse"
)

// StatsSource is the read side of the warehouse.
type StatsSource interface {
	Stats() warehouse.Stats
}

// SnapshotSaver persists one sample.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error
}

// Service polls a StatsSource, updates the gauges and stores a snapshot.
type Service struct {
	interval time.Duration
	source   StatsSource
	saver    SnapshotSaver
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService creates a monitor. saver and m may be nil.
func NewService(interval time.Duration, source StatsSource, saver SnapshotSaver, m *metrics.Metrics) *Service {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Service{interval: interval, source: source, saver: saver, metrics: m, now: time.Now}
}

// Run samples immediately and then every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	log.Println("Starting monitor service...")
	s.sample(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Monitor service shutting down.")
			return
		case <-timer.C:
			s.sample(ctx)
			timer.Reset(s.interval)
		}
	}
}

func (s *Service) sample(ctx context.Context) {
	if _, err := s.SampleOnce(ctx); err != nil {
		log.Printf("Error saving snapshot: %v", err)
	}
}

// SampleOnce takes one sample. The returned snapshot is valid even when saving fails.
func (s *Service) SampleOnce(ctx context.Context) (*model.Snapshot, error) {
	st := s.source.Stats()
	snap := &model.Snapshot{
		ObservedAt:        s.now().UTC(),
		TotalCells:        st.TotalCells,
		AvailableCells:    st.AvailableCells,
		IdleEquipment:     st.Equipment[equipment.StateIdle],
		BusyEquipment:     st.Equipment[equipment.StateBusy],
		ChargingEquipment: st.Equipment[equipment.StateCharging],
		OccupiedStations:  st.StationsOccupied,
		QueueTimeMS:       float64(st.QueueTime.Milliseconds()),
	}

	if s.metrics != nil {
		byState := make(map[string]int, len(st.Equipment))
		for state, n := range st.Equipment {
			byState[string(state)] = n
		}
		s.metrics.SetSample(metrics.Sample{
			AvailableCells:   st.AvailableCells,
			Equipment:        byState,
			StationsOccupied: st.StationsOccupied,
			QueueSeconds:     st.QueueTime.Seconds(),
		})
	}

	if s.saver == nil {
		return snap, nil
	}
	return snap, s.saver.SaveSnapshot(ctx, snap)
}
