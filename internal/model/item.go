package model

import "sync"

// ItemStatus is the lifecycle state of an inventory item.
type ItemStatus string

const (
	ItemAvailable ItemStatus = "AVAILABLE"
	ItemMoving    ItemStatus = "MOVING"
	ItemStored    ItemStatus = "STORED"
	ItemRetrieved ItemStatus = "RETRIEVED"
)

// Item is a unit of inventory. Position and status are mutated in place by the
// storage layer and by tasks, so they are only reachable through accessors.
type Item struct {
	ID          string
	Description string
	Weight      float64

	mu       sync.RWMutex
	position Position
	status   ItemStatus

	// claim is held by a placement task for its whole run.
	claim sync.Mutex
}

// NewItem creates an item in the AVAILABLE state.
func NewItem(id, description string, weight float64, pos Position) *Item {
	return &Item{
		ID:          id,
		Description: description,
		Weight:      weight,
		position:    pos,
		status:      ItemAvailable,
	}
}

// Position returns the item's current position.
func (i *Item) Position() Position {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.position
}

// Status returns the item's current status.
func (i *Item) Status() ItemStatus {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.status
}

// MoveTo updates the item's position.
func (i *Item) MoveTo(pos Position) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.position = pos
}

// SetStatus updates the item's status and returns the previous one.
func (i *Item) SetStatus(status ItemStatus) ItemStatus {
	i.mu.Lock()
	defer i.mu.Unlock()
	prev := i.status
	i.status = status
	return prev
}

// Claim blocks until the caller has exclusive use of the item and returns the
// function that gives it back.
func (i *Item) Claim() (release func()) {
	i.claim.Lock()
	return i.claim.Unlock
}
