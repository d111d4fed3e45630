package model

import "fmt"

// Position is a grid coordinate: row, column and level.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// NewPosition builds a Position.
func NewPosition(x, y, z int) Position {
	return Position{X: x, Y: y, Z: z}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}
