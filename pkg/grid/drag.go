package grid

import (
	"errors"
	"fmt"
)

var (
	ErrDragActive  = errors.New("a divider drag is already in progress")
	ErrNotDragging = errors.New("no divider drag in progress")
)

// Drag tracks a divider drag gesture: Idle -> Dragging(axis, index) -> Idle.
// The zero value is Idle.
type Drag struct {
	active bool
	axis   Axis
	index  int
}

// Begin enters the Dragging state for divider index of axis
func (d *Drag) Begin(c Config, axis Axis, index int) error {
	if d.active {
		return ErrDragActive
	}
	if count := c.Count(axis); index < 0 || index >= count-1 {
		return &ConfigError{
			Field:   axis.String() + "_positions",
			Message: fmt.Sprintf("divider index %d out of range for %d %ss", index, count, axis),
		}
	}
	d.active, d.axis, d.index = true, axis, index
	return nil
}

// Move applies a pointer move at percent to c while dragging
func (d *Drag) Move(c Config, percent float64) (Config, error) {
	if !d.active {
		return c, ErrNotDragging
	}
	return c.UpdatePosition(d.axis, d.index, percent)
}

// End returns to Idle. Ending an idle drag is a no-op.
func (d *Drag) End() {
	*d = Drag{}
}

// Active reports the divider being dragged, if any
func (d *Drag) Active() (Axis, int, bool) {
	return d.axis, d.index, d.active
}
