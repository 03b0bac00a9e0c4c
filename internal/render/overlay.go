package render

import (
	"bytes"
	"image"

	"github.com/gogpu/gg"

	"github.com/kiesman99/gridsplit/pkg/grid"
)

// Overlay draws the divider lines of cfg on top of img and returns the result
// as PNG. Divider positions come from grid.Dividers, so stale or missing
// custom positions are drawn equally spaced, as they will be split.
func Overlay(img image.Image, cfg grid.Config) ([]byte, error) {
	dc := gg.NewContextForImage(img)
	defer dc.Close()

	w, h := float64(dc.Width()), float64(dc.Height())
	dc.SetRGBA(99.0/255, 102.0/255, 241.0/255, 0.85)
	dc.SetLineWidth(max(2, min(w, h)/250))

	for _, p := range grid.Dividers(cfg, grid.AxisRow) {
		y := p / 100 * h
		dc.DrawLine(0, y, w, y)
	}
	for _, p := range grid.Dividers(cfg, grid.AxisCol) {
		x := p / 100 * w
		dc.DrawLine(x, 0, x, h)
	}
	if err := dc.Stroke(); err != nil {
		return nil, &RenderError{Row: -1, Col: -1, Op: "overlay", Err: err}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, &RenderError{Row: -1, Col: -1, Op: "overlay", Err: err}
	}
	return buf.Bytes(), nil
}
