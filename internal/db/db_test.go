package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-sim-backend/config"
	"warehouse-sim-backend/internal/model"
)

func TestDialector(t *testing.T) {
	testCases := []struct {
		name     string
		driver   string
		expected string
		wantErr  bool
	}{
		{name: "Postgres", driver: "postgres", expected: "postgres"},
		{name: "Postgres alias", driver: "PostgreSQL", expected: "postgres"},
		{name: "SQLite", driver: "sqlite", expected: "sqlite"},
		{name: "Empty defaults to SQLite", driver: "", expected: "sqlite"},
		{name: "MySQL", driver: "mysql", expected: "mysql"},
		{name: "Unknown", driver: "oracle", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Dialector(&config.DatabaseConfig{Driver: tc.driver, DSN: "x"})
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d.Name())
		})
	}
}

func TestInit_SQLiteMemory(t *testing.T) {
	gdb, err := Init(&config.DatabaseConfig{Driver: "sqlite", DSN: "file:dbinit?mode=memory&cache=shared", MaxOpenConns: 1})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	for _, m := range []any{&model.Event{}, &model.TaskRecord{}, &model.Snapshot{}, &model.PushSubscription{}} {
		assert.True(t, gdb.Migrator().HasTable(m))
	}
}
