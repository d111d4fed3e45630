package storage

import (
	"fmt"
	"sync"

	"warehouse-sim-backend/internal/eventlog"
	"warehouse-sim-backend/internal/model"
)

const logSource = "storage"

// Manager coordinates concurrent store, retrieve and move operations on one Storage.
//
// Single-cell operations hold opMu for reading and rely on the per-cell lock;
// MoveItem touches two cells and holds opMu exclusively.
type Manager struct {
	storage *Storage
	logger  eventlog.Logger

	opMu sync.RWMutex
}

// NewManager creates a manager for s.
func NewManager(s *Storage, logger eventlog.Logger) *Manager {
	if logger == nil {
		logger = eventlog.Nop{}
	}
	return &Manager{storage: s, logger: logger}
}

// Storage returns the managed storage.
func (m *Manager) Storage() *Storage {
	return m.storage
}

// Capacity returns the total number of cells.
func (m *Manager) Capacity() int {
	return m.storage.Capacity()
}

func (m *Manager) cellAt(pos model.Position) (*Cell, error) {
	c := m.storage.Cell(pos)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFound, pos)
	}
	return c, nil
}

// AddItemAt stores item in the cell at pos.
func (m *Manager) AddItemAt(item *model.Item, pos model.Position) error {
	m.opMu.RLock()
	defer m.opMu.RUnlock()

	c, err := m.cellAt(pos)
	if err != nil {
		return err
	}
	if err := c.reserveForStore(); err != nil {
		return err
	}
	defer c.unlock()

	if err := c.store(item); err != nil {
		return err
	}
	m.logger.Log(fmt.Sprintf("Item %s stored at %s", item.ID, pos), eventlog.LevelInfo, logSource)
	return nil
}

// AddItem stores item in the first available cell in row-major order and
// returns the chosen position.
func (m *Manager) AddItem(item *model.Item) (model.Position, error) {
	m.opMu.RLock()
	defer m.opMu.RUnlock()

	for _, c := range m.storage.Cells() {
		if !c.tryReserveForStore() {
			continue
		}
		err := c.store(item)
		c.unlock()
		if err != nil {
			return model.Position{}, err
		}
		m.logger.Log(fmt.Sprintf("Item %s stored at %s", item.ID, c.Position()), eventlog.LevelInfo, logSource)
		return c.Position(), nil
	}
	m.logger.Log(fmt.Sprintf("No available cell for item %s", item.ID), eventlog.LevelWarn, logSource)
	return model.Position{}, ErrStorageFull
}

// RetrieveItem removes and returns the item stored at pos.
func (m *Manager) RetrieveItem(pos model.Position) (*model.Item, error) {
	m.opMu.RLock()
	defer m.opMu.RUnlock()

	c, err := m.cellAt(pos)
	if err != nil {
		return nil, err
	}
	if err := c.reserveForRetrieve(); err != nil {
		return nil, err
	}
	defer c.unlock()

	item, err := c.retrieve()
	if err != nil {
		return nil, err
	}
	m.logger.Log(fmt.Sprintf("Item %s retrieved from %s", item.ID, pos), eventlog.LevelInfo, logSource)
	return item, nil
}

// MoveItem relocates the item at from into the empty cell at to.
func (m *Manager) MoveItem(from, to model.Position) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	src, err := m.cellAt(from)
	if err != nil {
		return err
	}
	dst, err := m.cellAt(to)
	if err != nil {
		return err
	}
	if src == dst {
		return fmt.Errorf("%w: source and destination are both %s", ErrCellOccupied, from)
	}
	if src.IsLocked() {
		return fmt.Errorf("%w: %s", ErrCellLocked, from)
	}
	if dst.IsLocked() {
		return fmt.Errorf("%w: %s", ErrCellLocked, to)
	}
	if src.IsEmpty() {
		return fmt.Errorf("%w: %s", ErrCellEmpty, from)
	}
	if !dst.IsEmpty() {
		return fmt.Errorf("%w: %s", ErrCellOccupied, to)
	}

	item, err := src.retrieve()
	if err != nil {
		return err
	}
	if err := dst.store(item); err != nil {
		// put it back where it was
		_ = src.store(item)
		return err
	}
	m.logger.Log(fmt.Sprintf("Item %s moved from %s to %s", item.ID, from, to), eventlog.LevelInfo, logSource)
	return nil
}

// CountAvailableCells returns the number of unlocked empty cells. The value is
// a snapshot and must not be used to claim a cell.
func (m *Manager) CountAvailableCells() int {
	n := 0
	for _, c := range m.storage.Cells() {
		if c.IsAvailable() {
			n++
		}
	}
	return n
}

// FindFirstAvailableCell returns the first available cell in scan order, or nil.
func (m *Manager) FindFirstAvailableCell() *Cell {
	for _, c := range m.storage.Cells() {
		if c.IsAvailable() {
			return c
		}
	}
	return nil
}

// Cells returns a view of every cell in scan order.
func (m *Manager) Cells() []CellView {
	cells := m.storage.Cells()
	views := make([]CellView, 0, len(cells))
	for _, c := range cells {
		views = append(views, c.View())
	}
	return views
}
