package grid

import (
	"fmt"
	"math"
	"sort"
)

// Count returns the number of bands along axis
func (c Config) Count(axis Axis) int {
	if axis == AxisRow {
		return c.Rows
	}
	return c.Cols
}

// Positions returns the custom divider percentages along axis, if any
func (c Config) Positions(axis Axis) []float64 {
	if axis == AxisRow {
		return c.RowPositions
	}
	return c.ColPositions
}

// Validate checks the counts against [MinCount, MaxCount] and that custom
// positions are ascending percentages. Positions whose length does not match
// the count are not an error; they are ignored by ComputeCuts.
func (c Config) Validate() error {
	for _, axis := range []Axis{AxisRow, AxisCol} {
		field := axis.String() + "s"
		n := c.Count(axis)
		if n < MinCount || n > MaxCount {
			return &ConfigError{
				Field:   field,
				Message: fmt.Sprintf("%d is outside [%d, %d]", n, MinCount, MaxCount),
			}
		}

		positions := c.Positions(axis)
		if len(positions) != n-1 {
			continue
		}
		for i, p := range positions {
			if math.IsNaN(p) || p < 0 || p > 100 {
				return &ConfigError{
					Field:   axis.String() + "_positions",
					Message: fmt.Sprintf("position %d (%g) is outside [0, 100]", i, p),
				}
			}
			if i > 0 && p < positions[i-1] {
				return &ConfigError{
					Field:   axis.String() + "_positions",
					Message: fmt.Sprintf("position %d (%g) is below position %d (%g)", i, p, i-1, positions[i-1]),
				}
			}
		}
	}
	return nil
}

// WithCount returns a copy of c with the band count of axis set to n, clamped
// to [MinCount, MaxCount]. The custom positions of that axis are cleared
// because they no longer describe the new count.
func (c Config) WithCount(axis Axis, n int) Config {
	n = max(MinCount, min(MaxCount, n))
	out := c.clone()
	if axis == AxisRow {
		out.Rows = n
		out.RowPositions = nil
	} else {
		out.Cols = n
		out.ColPositions = nil
	}
	return out
}

// UpdatePosition moves divider index of axis to percent and returns the new
// config. Missing positions are initialised to equal spacing first. The
// positions are re-sorted afterwards, so a divider dragged past a neighbour
// takes over that neighbour's index.
func (c Config) UpdatePosition(axis Axis, index int, percent float64) (Config, error) {
	count := c.Count(axis)
	if index < 0 || index >= count-1 {
		return c, &ConfigError{
			Field:   axis.String() + "_positions",
			Message: fmt.Sprintf("divider index %d out of range for %d %ss", index, count, axis),
		}
	}
	if math.IsNaN(percent) {
		return c, &ConfigError{
			Field:   axis.String() + "_positions",
			Message: "position is NaN",
		}
	}

	positions := c.Positions(axis)
	if len(positions) == count-1 {
		positions = append([]float64(nil), positions...)
	} else {
		positions = EqualPositions(count)
	}
	positions[index] = max(0, min(100, percent))
	sort.Float64s(positions)

	out := c.clone()
	if axis == AxisRow {
		out.RowPositions = positions
	} else {
		out.ColPositions = positions
	}
	return out, nil
}

func (c Config) clone() Config {
	out := c
	if c.RowPositions != nil {
		out.RowPositions = append([]float64(nil), c.RowPositions...)
	}
	if c.ColPositions != nil {
		out.ColPositions = append([]float64(nil), c.ColPositions...)
	}
	return out
}
