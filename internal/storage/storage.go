package storage

import (
	"fmt"

	"warehouse-sim-backend/internal/model"
)

// Storage is the fixed 3D grid of cells of one warehouse.
type Storage struct {
	ID   string
	Name string

	x, y, z int
	cells   []*Cell
}

// New creates a storage of x*y*z cells. Cells are laid out row-major: x, then y, then z.
func New(id, name string, x, y, z int) (*Storage, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("invalid storage dimensions %dx%dx%d", x, y, z)
	}
	s := &Storage{ID: id, Name: name, x: x, y: y, z: z, cells: make([]*Cell, 0, x*y*z)}
	for i := 0; i < x; i++ {
		for j := 0; j < y; j++ {
			for k := 0; k < z; k++ {
				s.cells = append(s.cells, newCell(model.NewPosition(i, j, k)))
			}
		}
	}
	return s, nil
}

// Dimensions returns the grid size.
func (s *Storage) Dimensions() (x, y, z int) {
	return s.x, s.y, s.z
}

// Capacity returns the total number of cells.
func (s *Storage) Capacity() int {
	return len(s.cells)
}

// Cell returns the cell at pos, or nil when pos is outside the grid.
func (s *Storage) Cell(pos model.Position) *Cell {
	if pos.X < 0 || pos.X >= s.x || pos.Y < 0 || pos.Y >= s.y || pos.Z < 0 || pos.Z >= s.z {
		return nil
	}
	return s.cells[(pos.X*s.y+pos.Y)*s.z+pos.Z]
}

// Cells returns the cells in scan order. The slice must not be modified.
func (s *Storage) Cells() []*Cell {
	return s.cells
}
