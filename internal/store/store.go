package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warehouse-sim-backend/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

const maxRecentEvents = 500

// Store defines the interface for all database operations.
type Store interface {
	SaveEvents(ctx context.Context, events []model.Event) error
	RecentEvents(ctx context.Context, source string, limit int) ([]model.Event, error)

	SaveTaskResults(ctx context.Context, records []model.TaskRecord) error
	ListTaskResults(ctx context.Context, batchID string) ([]model.TaskRecord, error)

	SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// SaveEvents inserts a batch of events.
func (s *gormStore) SaveEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&events).Error; err != nil {
		return fmt.Errorf("failed to save %d events: %w", len(events), err)
	}
	return nil
}

// RecentEvents returns the newest events first. An empty source matches all sources.
func (s *gormStore) RecentEvents(ctx context.Context, source string, limit int) ([]model.Event, error) {
	if limit <= 0 || limit > maxRecentEvents {
		limit = maxRecentEvents
	}

	q := s.db.WithContext(ctx)
	if source != "" {
		q = q.Where("source = ?", source)
	}

	var events []model.Event
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	return events, nil
}

// SaveTaskResults upserts task records keyed by task id.
func (s *gormStore) SaveTaskResults(ctx context.Context, records []model.TaskRecord) error {
	if len(records) == 0 {
		return nil
	}
	log.Printf("Saving %d task results...", len(records))
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"batch_id", "kind", "equipment_id", "status", "error", "started_at", "finished_at"}),
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("batch upsert task results failed: %w", err)
	}
	return nil
}

// ListTaskResults returns the records of one batch in start order.
func (s *gormStore) ListTaskResults(ctx context.Context, batchID string) ([]model.TaskRecord, error) {
	var records []model.TaskRecord
	if err := s.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("started_at").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch task results for batch %s: %w", batchID, err)
	}
	return records, nil
}

// SaveSnapshot inserts one utilization sample.
func (s *gormStore) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	if err := s.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// UpsertSubscription creates a subscription or replaces its keys.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions: %w", err)
	}
	return subs, nil
}
