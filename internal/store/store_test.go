package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/task"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_SaveEvents(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name             string
		events           []model.Event
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      bool
	}{
		{
			name: "Inserts all events in one statement",
			events: []model.Event{
				{CreatedAt: now, Level: "INFO", Source: "storage", Message: "Item A stored at (0,0,0)"},
				{CreatedAt: now, Level: "WARN", Source: "task", Message: "Failed to store B"},
			},
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "events"`)).
					WithArgs(Any{}, "INFO", "storage", "Item A stored at (0,0,0)", Any{}, "WARN", "task", "Failed to store B").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
				mock.ExpectCommit()
			},
		},
		{
			name:             "Empty batch does nothing",
			events:           nil,
			mockExpectations: func(mock sqlmock.Sqlmock) {},
		},
		{
			name:   "Insert failure is returned",
			events: []model.Event{{CreatedAt: now, Level: "INFO", Source: "x", Message: "y"}},
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "events"`)).
					WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			err := store.SaveEvents(context.Background(), tc.events)
			if tc.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_RecentEvents(t *testing.T) {
	now := time.Now()
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "events" WHERE source = $1 ORDER BY created_at DESC,id DESC LIMIT`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "level", "source", "message"}).
			AddRow(2, now, "INFO", "storage", "second").
			AddRow(1, now.Add(-time.Second), "INFO", "storage", "first"))

	events, err := store.RecentEvents(context.Background(), "storage", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "second", events[0].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SaveTaskResults(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	start := time.Now()
	records := []model.TaskRecord{
		NewTaskRecord("batch-1", task.Result{TaskID: "t1", Kind: task.KindStoreAuto, StartedAt: start, FinishedAt: start}),
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "task_records"`)+`.*`+regexp.QuoteMeta(`ON CONFLICT ("task_id") DO UPDATE SET`)).
		WithArgs("t1", "batch-1", "store_auto", "", model.TaskStatusCompleted, "", Any{}, Any{}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveTaskResults(context.Background(), records))
	require.NoError(t, store.SaveTaskResults(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListTaskResults(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "task_records" WHERE batch_id = $1 ORDER BY started_at`)).
		WithArgs("batch-1").
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "batch_id", "kind", "status", "error", "started_at", "finished_at"}).
			AddRow("t1", "batch-1", "retrieve", "failed", "cell is empty: (0,0,0)", now, now))

	records, err := store.ListTaskResults(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.TaskStatusFailed, records[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SaveSnapshot(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "snapshots"`)).
		WithArgs(Any{}, 500, 480, 3, 1, 2, 1, 4000.0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	snap := &model.Snapshot{
		ObservedAt: time.Now(), TotalCells: 500, AvailableCells: 480,
		IdleEquipment: 3, BusyEquipment: 1, ChargingEquipment: 2, OccupiedStations: 1, QueueTimeMS: 4000,
	}
	require.NoError(t, store.SaveSnapshot(context.Background(), snap))
	assert.EqualValues(t, 7, snap.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_GetSubscription_NotFound(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions" WHERE endpoint = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint"}))

	_, err := store.GetSubscription(context.Background(), "https://push.example/abc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewTaskRecord(t *testing.T) {
	start := time.Now()
	ok := NewTaskRecord("b", task.Result{TaskID: "t1", Kind: task.KindMove, EquipmentID: "AGV001", StartedAt: start, FinishedAt: start.Add(time.Second)})
	assert.Equal(t, model.TaskStatusCompleted, ok.Status)
	assert.Empty(t, ok.Error)
	assert.Equal(t, "AGV001", ok.EquipmentID)

	failed := NewTaskRecord("b", task.Result{TaskID: "t2", Kind: task.KindMove, Err: errors.New("cell is empty")})
	assert.Equal(t, model.TaskStatusFailed, failed.Status)
	assert.Equal(t, "cell is empty", failed.Error)
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
