package grid

import (
	"fmt"
	"image"
	"strings"
)

// Count limits for rows and columns. A count of 1 means "no cut" on that axis.
const (
	MinCount = 1
	MaxCount = 20
)

// Axis selects the row or column dimension of a grid
type Axis int

const (
	AxisRow Axis = iota
	AxisCol
)

func (a Axis) String() string {
	switch a {
	case AxisRow:
		return "row"
	case AxisCol:
		return "col"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ParseAxis accepts "row"/"rows" and "col"/"cols"/"column"/"columns"
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "row", "rows":
		return AxisRow, nil
	case "col", "cols", "column", "columns":
		return AxisCol, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// Config holds the user-editable grid settings.
//
// Positions are percentages of the image extent. They are only honoured when
// their length is exactly count-1; anything else falls back to equal spacing.
type Config struct {
	Rows         int       `json:"rows" mapstructure:"rows"`
	Cols         int       `json:"cols" mapstructure:"cols"`
	RowPositions []float64 `json:"row_positions,omitempty" mapstructure:"row_positions"`
	ColPositions []float64 `json:"col_positions,omitempty" mapstructure:"col_positions"`
}

// DefaultConfig returns the 3x3 grid a fresh image starts with
func DefaultConfig() Config {
	return Config{Rows: 3, Cols: 3}
}

// Rect is one tile of a partition in source-image pixel space.
// X, Y, Width and Height are the exact (possibly fractional) cut offsets;
// Pixels is the integer rectangle obtained by rounding each cut.
type Rect struct {
	Row    int
	Col    int
	X      float64
	Y      float64
	Width  float64
	Height float64
	Pixels image.Rectangle
}

// Empty reports whether the rectangle covers no whole pixel
func (r Rect) Empty() bool {
	return r.Pixels.Empty()
}

// ConfigError reports a grid configuration outside the supported range
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid grid config: %s: %s", e.Field, e.Message)
}
