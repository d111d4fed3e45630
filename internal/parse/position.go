package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"warehouse-sim-backend/internal/model"
)

var positionRe = regexp.MustCompile(`^\(?\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*\)?$`)

// ParsePosition reads a position written as "(x,y,z)" or "x,y,z".
// Whitespace around the numbers is ignored.
func ParsePosition(raw string) (model.Position, error) {
	s := strings.TrimSpace(raw)
	m := positionRe.FindStringSubmatch(s)
	if m == nil || strings.HasPrefix(s, "(") != strings.HasSuffix(s, ")") {
		return model.Position{}, fmt.Errorf("unable to parse position: %q", raw)
	}

	var coords [3]int
	for i := range coords {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return model.Position{}, fmt.Errorf("unable to parse position %q: %w", raw, err)
		}
		coords[i] = n
	}
	return model.NewPosition(coords[0], coords[1], coords[2]), nil
}

// FormatPosition is the inverse of ParsePosition.
func FormatPosition(p model.Position) string {
	return p.String()
}
