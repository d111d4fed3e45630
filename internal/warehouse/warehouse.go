// Package warehouse builds the simulated world from config and runs task
// batches against it.
package warehouse

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"warehouse-sim-backend/config"
	"warehouse-sim-backend/internal/apperr"
	"warehouse-sim-backend/internal/equipment"
	"warehouse-sim-backend/internal/eventlog"
	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/parse"
	"warehouse-sim-backend/internal/storage"
	"warehouse-sim-backend/internal/task"
	"warehouse-sim-backend/internal/worker"
)

const logSource = "warehouse"

var ErrItemNotFound = apperr.Kinded(apperr.ErrNotFound, "item not found")

// Warehouse owns the registries and the worker pool.
type Warehouse struct {
	ID   string
	Name string

	storage   *storage.Manager
	equipment *equipment.Manager
	stations  *equipment.StationPool
	env       *task.Env
	pool      *worker.Pool
	logger    eventlog.Logger

	itemsMu sync.RWMutex
	items   map[string]*model.Item

	batchesMu sync.RWMutex
	batches   map[string]*worker.Batch

	// OnResult and OnBatchDone must be set before Start.
	OnResult    func(batchID string, res task.Result)
	OnBatchDone func(summary worker.Summary)
}

// New builds a warehouse from cfg. Nothing is random: generated units,
// stations and items get sequential ids and fixed parameters.
func New(cfg *config.Config, logger eventlog.Logger) (*Warehouse, error) {
	if logger == nil {
		logger = eventlog.Nop{}
	}
	wc := cfg.Warehouse

	st, err := storage.New(wc.ID, wc.Name, wc.Grid.X, wc.Grid.Y, wc.Grid.Z)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	w := &Warehouse{
		ID:        wc.ID,
		Name:      wc.Name,
		storage:   storage.NewManager(st, logger),
		equipment: equipment.NewManager(logger),
		pool:      worker.NewPool(cfg.WorkerPool.Size),
		logger:    logger,
		items:     make(map[string]*model.Item),
		batches:   make(map[string]*worker.Batch),
	}

	if err := w.buildEquipment(wc); err != nil {
		return nil, err
	}
	stations, err := buildStations(wc, cfg.Simulation.ChargeStep)
	if err != nil {
		return nil, err
	}
	w.stations = equipment.NewStationPool(stations, cfg.Simulation.StationRetry, logger)
	if err := w.buildItems(wc); err != nil {
		return nil, err
	}

	w.env = &task.Env{
		Storage:   w.storage,
		Equipment: w.equipment,
		Logger:    logger,
		Transit:   cfg.Simulation.TransitDelay,
	}
	w.pool.OnResult = w.handleResult
	w.pool.OnBatchDone = w.handleBatchDone

	logger.Log(fmt.Sprintf("Warehouse %s ready: %d cells, %d units, %d stations, %d items",
		w.Name, st.Capacity(), len(w.equipment.List()), len(stations), len(w.items)), eventlog.LevelInfo, logSource)
	return w, nil
}

// Start launches the worker pool. Workers stop when ctx is cancelled.
func (w *Warehouse) Start(ctx context.Context) {
	w.pool.Start(ctx)
}

func (w *Warehouse) Storage() *storage.Manager        { return w.storage }
func (w *Warehouse) Equipment() *equipment.Manager    { return w.equipment }
func (w *Warehouse) Stations() *equipment.StationPool { return w.stations }

// Item returns the item with id, or nil.
func (w *Warehouse) Item(id string) *model.Item {
	w.itemsMu.RLock()
	defer w.itemsMu.RUnlock()
	return w.items[id]
}

// Items returns every known item sorted by id.
func (w *Warehouse) Items() []*model.Item {
	w.itemsMu.RLock()
	out := make([]*model.Item, 0, len(w.items))
	for _, it := range w.items {
		out = append(out, it)
	}
	w.itemsMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddItem registers a new unstored item.
func (w *Warehouse) AddItem(item *model.Item) error {
	w.itemsMu.Lock()
	defer w.itemsMu.Unlock()
	if _, ok := w.items[item.ID]; ok {
		return fmt.Errorf("%w: item %s already exists", apperr.ErrConflict, item.ID)
	}
	w.items[item.ID] = item
	return nil
}

// SubmitBatch validates every request, then queues them as one batch.
// Nothing is queued when any request is invalid.
func (w *Warehouse) SubmitBatch(reqs []TaskRequest) (*worker.Batch, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", apperr.ErrInvalidRequest)
	}
	tasks := make([]task.Task, 0, len(reqs))
	for i, req := range reqs {
		t, err := w.NewTask(uuid.NewString(), req)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}

	id := uuid.NewString()
	// register under the lock so Batch(id) sees it as soon as it runs
	w.batchesMu.Lock()
	batch := w.pool.Submit(id, tasks...)
	w.batches[id] = batch
	w.batchesMu.Unlock()

	w.logger.Log(fmt.Sprintf("Batch %s submitted with %d tasks", id, len(tasks)), eventlog.LevelInfo, logSource)
	return batch, nil
}

// Batch returns a submitted batch.
func (w *Warehouse) Batch(id string) (*worker.Batch, bool) {
	w.batchesMu.RLock()
	defer w.batchesMu.RUnlock()
	b, ok := w.batches[id]
	return b, ok
}

func (w *Warehouse) handleResult(batch *worker.Batch, res task.Result) {
	if res.Err != nil {
		w.logger.Log(fmt.Sprintf("Task %s (%s) failed: %v", res.TaskID, res.Kind, res.Err), eventlog.LevelWarn, logSource)
	} else {
		w.logger.Log(fmt.Sprintf("Task %s (%s) completed in %s", res.TaskID, res.Kind, res.Duration().Round(time.Millisecond)), eventlog.LevelDebug, logSource)
	}
	if w.OnResult != nil {
		w.OnResult(batch.ID, res)
	}
}

func (w *Warehouse) handleBatchDone(batch *worker.Batch) {
	summary := batch.Summary()
	w.logger.Log(fmt.Sprintf("Batch %s finished: %d tasks, %d failed", summary.ID, summary.Total, summary.Failed), eventlog.LevelInfo, logSource)
	if w.OnBatchDone != nil {
		w.OnBatchDone(summary)
	}
}

// Stats is a read-only sample of the warehouse accessors.
type Stats struct {
	TotalCells       int                     `json:"total_cells"`
	AvailableCells   int                     `json:"available_cells"`
	Equipment        map[equipment.State]int `json:"equipment"`
	StationsOccupied int                     `json:"stations_occupied"`
	QueueTime        time.Duration           `json:"-"`
}

// Stats samples the accessors. Values are not mutually consistent.
func (w *Warehouse) Stats() Stats {
	return Stats{
		TotalCells:       w.storage.Capacity(),
		AvailableCells:   w.storage.CountAvailableCells(),
		Equipment:        w.equipment.CountByState(),
		StationsOccupied: w.stations.Occupied(),
		QueueTime:        w.stations.QueueTime(),
	}
}

func parsePositionField(field, raw string) (model.Position, error) {
	pos, err := parse.ParsePosition(raw)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidRequest, field, err)
	}
	return pos, nil
}
