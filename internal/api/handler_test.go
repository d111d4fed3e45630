package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"warehouse-sim-backend/config"
	"warehouse-sim-backend/internal/eventlog"
	"warehouse-sim-backend/internal/metrics"
	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/store"
	"warehouse-sim-backend/internal/warehouse"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockStore is a mock implementation of store.Store.
type mockStore struct {
	mu         sync.Mutex
	events     []model.Event
	records    map[string][]model.TaskRecord
	subs       map[string]model.PushSubscription
	RecentErr  error
	lastSource string
	lastLimit  int
}

func newMockStore() *mockStore {
	return &mockStore{records: map[string][]model.TaskRecord{}, subs: map[string]model.PushSubscription{}}
}

func (m *mockStore) SaveEvents(ctx context.Context, events []model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *mockStore) RecentEvents(ctx context.Context, source string, limit int) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSource, m.lastLimit = source, limit
	return m.events, m.RecentErr
}

func (m *mockStore) SaveTaskResults(ctx context.Context, records []model.TaskRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.BatchID] = append(m.records[r.BatchID], r)
	}
	return nil
}

func (m *mockStore) ListTaskResults(ctx context.Context, batchID string) ([]model.TaskRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[batchID], nil
}

func (m *mockStore) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error { return nil }

func (m *mockStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.Endpoint] = *sub
	return nil
}

func (m *mockStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[endpoint]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sub, nil
}

func (m *mockStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, endpoint)
	return nil
}

func (m *mockStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	return nil, nil
}

func (m *mockStore) DB() *gorm.DB { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server = config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 0}
	cfg.Warehouse = config.WarehouseConfig{
		ID:    "WH001",
		Name:  "Test",
		Grid:  config.GridConfig{X: 2, Y: 2, Z: 1},
		Fleet: config.FleetConfig{AGVs: 1, Cranes: 1},
		Items: []config.ItemConfig{
			{ID: "BOX-1", Weight: 1, StoreAt: "(0,0,0)"},
			{ID: "BOX-2", Weight: 2},
		},
		StationCount: 1,
	}
	cfg.Simulation.ChargeStep = time.Millisecond
	cfg.WorkerPool.Size = 2
	return cfg
}

type testEnv struct {
	router    *gin.Engine
	warehouse *warehouse.Warehouse
	store     *mockStore
}

func setupRouter(t *testing.T, withStore bool) testEnv {
	cfg := testConfig()
	w, err := warehouse.New(cfg, eventlog.Nop{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w.Start(ctx)

	env := testEnv{warehouse: w}
	var s store.Store
	if withStore {
		env.store = newMockStore()
		s = env.store
	}
	handler := NewHandler(w, s, &webpush.Options{VAPIDPublicKey: "public-key"})
	env.router = NewRouter(handler, cfg.Server, metrics.New().Handler())
	return env
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetStorage(t *testing.T) {
	env := setupRouter(t, false)

	w := doRequest(env.router, http.MethodGet, "/api/storage", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp StorageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Capacity)
	assert.Equal(t, 1, resp.Occupied)
	assert.Equal(t, 3, resp.Available)
	assert.Equal(t, 0.25, resp.Utilization)
	assert.Equal(t, 2, resp.X)
}

func TestGetCells(t *testing.T) {
	env := setupRouter(t, false)

	w := doRequest(env.router, http.MethodGet, "/api/storage/cells?occupied=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"CELL-0-0-0","position":{"x":0,"y":0,"z":0},"item_id":"BOX-1","locked":false}]`, w.Body.String())

	w = doRequest(env.router, http.MethodGet, "/api/storage/cells", nil)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 4)
}

func TestGetEquipmentStationsItems(t *testing.T) {
	env := setupRouter(t, false)

	w := doRequest(env.router, http.MethodGet, "/api/equipment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var units []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &units))
	require.Len(t, units, 2)
	assert.Equal(t, "AGV001", units[0]["id"])
	assert.Equal(t, "IDLE", units[0]["state"])

	w = doRequest(env.router, http.MethodGet, "/api/stations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stations []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stations))
	require.Len(t, stations, 1)
	assert.Equal(t, "CS001", stations[0]["id"])

	w = doRequest(env.router, http.MethodGet, "/api/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []ItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, model.ItemStored, items[0].Status)
	assert.Equal(t, model.ItemAvailable, items[1].Status)
}

func TestSubmitBatch(t *testing.T) {
	testCases := []struct {
		name         string
		body         any
		expectedCode int
	}{
		{
			name:         "Accepted",
			body:         gin.H{"tasks": []gin.H{{"type": "store_auto", "item_id": "BOX-2"}}},
			expectedCode: http.StatusAccepted,
		},
		{
			name:         "Empty task list",
			body:         gin.H{"tasks": []gin.H{}},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Missing type",
			body:         gin.H{"tasks": []gin.H{{"item_id": "BOX-2"}}},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Unknown item",
			body:         gin.H{"tasks": []gin.H{{"type": "store_auto", "item_id": "NOPE"}}},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Bad position",
			body:         gin.H{"tasks": []gin.H{{"type": "retrieve", "position": "here"}}},
			expectedCode: http.StatusBadRequest,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupRouter(t, false)
			w := doRequest(env.router, http.MethodPost, "/api/batches", tc.body)
			assert.Equal(t, tc.expectedCode, w.Code, w.Body.String())
		})
	}
}

func TestSubmitAndGetBatch(t *testing.T) {
	env := setupRouter(t, false)

	w := doRequest(env.router, http.MethodPost, "/api/batches", gin.H{"tasks": []gin.H{
		{"type": "retrieve", "position": "(0,0,0)", "equipment_id": "CR001"},
		{"type": "retrieve", "position": "(1,1,0)"},
	}})
	require.Equal(t, http.StatusAccepted, w.Code)
	var accepted map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	batchID := accepted["batch_id"].(string)

	var resp BatchResponse
	require.Eventually(t, func() bool {
		w := doRequest(env.router, http.MethodGet, "/api/batches/"+batchID, nil)
		if w.Code != http.StatusOK {
			return false
		}
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		return resp.Done
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, model.TaskStatusCompleted, resp.Results[0].Status)
	assert.Equal(t, "CR001", resp.Results[0].EquipmentID)
	assert.Equal(t, model.TaskStatusFailed, resp.Results[1].Status)
	assert.Contains(t, resp.Results[1].Error, "cell is empty")
}

func TestGetBatch_FromStore(t *testing.T) {
	env := setupRouter(t, true)
	now := time.Now()
	require.NoError(t, env.store.SaveTaskResults(context.Background(), []model.TaskRecord{
		{TaskID: "t1", BatchID: "old", Kind: "move", Status: model.TaskStatusFailed, Error: "cell is empty", StartedAt: now, FinishedAt: now},
	}))

	w := doRequest(env.router, http.MethodGet, "/api/batches/old", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Done)
	assert.Equal(t, 1, resp.Failed)

	w = doRequest(env.router, http.MethodGet, "/api/batches/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEvents(t *testing.T) {
	env := setupRouter(t, true)
	require.NoError(t, env.store.SaveEvents(context.Background(), []model.Event{{Level: "INFO", Source: "storage", Message: "hello"}}))

	w := doRequest(env.router, http.MethodGet, "/api/events?source=storage&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "storage", env.store.lastSource)
	assert.Equal(t, 5, env.store.lastLimit)
	assert.Contains(t, w.Body.String(), "hello")

	w = doRequest(env.router, http.MethodGet, "/api/events?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.store.RecentErr = errors.New("db down")
	w = doRequest(env.router, http.MethodGet, "/api/events", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	noStore := setupRouter(t, false)
	w = doRequest(noStore.router, http.MethodGet, "/api/events", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSubscriptions(t *testing.T) {
	env := setupRouter(t, true)

	w := doRequest(env.router, http.MethodPut, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())

	w = doRequest(env.router, http.MethodPut, "/api/subscriptions", gin.H{
		"endpoint": "https://push.example/abc", "p256dh": "key", "auth": "secret",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(env.router, http.MethodGet, "/api/subscriptions?endpoint=https://push.example/abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(env.router, http.MethodDelete, "/api/subscriptions", gin.H{"endpoint": "https://push.example/abc"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(env.router, http.MethodGet, "/api/subscriptions?endpoint=https://push.example/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(env.router, http.MethodGet, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	env := setupRouter(t, false)
	w := doRequest(env.router, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"public-key"}`, w.Body.String())

	r := gin.New()
	r.GET("/key", NewHandler(env.warehouse, nil, nil).GetVAPIDPublicKey)
	w = doRequest(r, http.MethodGet, "/key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupRouter(t, false)
	w := doRequest(env.router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "warehouse_available_cells")
}
