package storage

import (
	"fmt"
	"sync"

	"warehouse-sim-backend/internal/model"
)

// Cell is a single storage slot. The locked flag is a reservation taken by an
// in-flight store or retrieve and is independent of whether an item is held.
type Cell struct {
	id       string
	position model.Position

	mu      sync.Mutex
	content *model.Item
	locked  bool
}

func newCell(pos model.Position) *Cell {
	return &Cell{
		id:       fmt.Sprintf("CELL-%d-%d-%d", pos.X, pos.Y, pos.Z),
		position: pos,
	}
}

func (c *Cell) ID() string { return c.id }

func (c *Cell) Position() model.Position { return c.position }

// Content returns the held item, or nil.
func (c *Cell) Content() *model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

func (c *Cell) IsLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

func (c *Cell) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content == nil
}

// IsAvailable reports whether the cell is unlocked and empty.
func (c *Cell) IsAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.availableLocked()
}

func (c *Cell) availableLocked() bool {
	return !c.locked && c.content == nil
}

// reserveForStore locks an available cell in one critical section.
func (c *Cell) reserveForStore() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return fmt.Errorf("%w: %s", ErrCellLocked, c.position)
	}
	if c.content != nil {
		return fmt.Errorf("%w: %s", ErrCellOccupied, c.position)
	}
	c.locked = true
	return nil
}

// tryReserveForStore is the non-failing variant used by the auto-placement scan.
func (c *Cell) tryReserveForStore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.availableLocked() {
		return false
	}
	c.locked = true
	return true
}

// reserveForRetrieve locks a cell that holds an item.
func (c *Cell) reserveForRetrieve() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return fmt.Errorf("%w: %s", ErrCellLocked, c.position)
	}
	if c.content == nil {
		return fmt.Errorf("%w: %s", ErrCellEmpty, c.position)
	}
	c.locked = true
	return nil
}

func (c *Cell) unlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = false
}

// store places item in the cell and marks it STORED at the cell's position.
func (c *Cell) store(item *model.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.content != nil {
		return fmt.Errorf("%w: %s", ErrCellOccupied, c.position)
	}
	c.content = item
	item.MoveTo(c.position)
	item.SetStatus(model.ItemStored)
	return nil
}

// retrieve empties the cell and marks the item RETRIEVED.
func (c *Cell) retrieve() (*model.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.content == nil {
		return nil, fmt.Errorf("%w: %s", ErrCellEmpty, c.position)
	}
	item := c.content
	c.content = nil
	item.SetStatus(model.ItemRetrieved)
	return item, nil
}

// CellView is a point-in-time copy of a cell for read-only consumers.
type CellView struct {
	ID       string         `json:"id"`
	Position model.Position `json:"position"`
	ItemID   string         `json:"item_id,omitempty"`
	Locked   bool           `json:"locked"`
}

// View returns a consistent snapshot of the cell.
func (c *Cell) View() CellView {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := CellView{ID: c.id, Position: c.position, Locked: c.locked}
	if c.content != nil {
		v.ItemID = c.content.ID
	}
	return v
}
