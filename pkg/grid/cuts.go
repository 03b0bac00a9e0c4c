package grid

import (
	"image"
	"math"
)

// ComputeCuts returns count+1 offsets along an axis of the given extent.
// The first offset is always 0 and the last is always total, never a computed
// multiple of it. Positions are used verbatim when len(positions) == count-1;
// they are not clamped or sorted here.
func ComputeCuts(total float64, count int, positions []float64) []float64 {
	if count <= 1 {
		return []float64{0, total}
	}

	cuts := make([]float64, 0, count+1)
	cuts = append(cuts, 0)
	if len(positions) == count-1 {
		for _, p := range positions {
			cuts = append(cuts, p/100*total)
		}
	} else {
		for i := 1; i < count; i++ {
			cuts = append(cuts, float64(i)/float64(count)*total)
		}
	}
	return append(cuts, total)
}

// ComputeRectangles partitions a width x height image into rectangles in
// row-major order. Adjacent rectangles share their rounded pixel edge, so
// the pixel rectangles tile the image with no gap or overlap.
func ComputeRectangles(width, height int, c Config) []Rect {
	rowCuts := ComputeCuts(float64(height), c.Rows, c.RowPositions)
	colCuts := ComputeCuts(float64(width), c.Cols, c.ColPositions)

	rects := make([]Rect, 0, (len(rowCuts)-1)*(len(colCuts)-1))
	for r := 0; r < len(rowCuts)-1; r++ {
		y0, y1 := rowCuts[r], rowCuts[r+1]
		for col := 0; col < len(colCuts)-1; col++ {
			x0, x1 := colCuts[col], colCuts[col+1]
			rects = append(rects, Rect{
				Row:    r,
				Col:    col,
				X:      x0,
				Y:      y0,
				Width:  x1 - x0,
				Height: y1 - y0,
				// Not image.Rect: inverted cuts must stay inverted (and so
				// Empty) rather than being swapped into a valid rectangle.
				Pixels: image.Rectangle{
					Min: image.Pt(round(x0), round(y0)),
					Max: image.Pt(round(x1), round(y1)),
				},
			})
		}
	}
	return rects
}

// EqualPositions returns the equally spaced divider percentages for count bands
func EqualPositions(count int) []float64 {
	if count <= 1 {
		return nil
	}
	positions := make([]float64, count-1)
	for i := range positions {
		positions[i] = float64(i+1) / float64(count) * 100
	}
	return positions
}

// Dividers returns the percentages at which an overlay draws the dividers of
// one axis: the custom positions when they are length-consistent, otherwise
// equal spacing.
func Dividers(c Config, axis Axis) []float64 {
	count, positions := c.Count(axis), c.Positions(axis)
	if count > 1 && len(positions) == count-1 {
		return append([]float64(nil), positions...)
	}
	return EqualPositions(count)
}

// round maps a cut to a pixel edge; both neighbours of a cut round the same
// value so they share the edge.
func round(v float64) int {
	return int(math.Round(v))
}
