package server

import (
	"github.com/google/uuid"

	"github.com/kiesman99/gridsplit/internal/api"
	"github.com/kiesman99/gridsplit/internal/export"
	"github.com/kiesman99/gridsplit/internal/render"
	"github.com/kiesman99/gridsplit/internal/session"
	"github.com/kiesman99/gridsplit/pkg/grid"
)

func toAPIGrid(c grid.Config) api.GridConfig {
	g := api.GridConfig{Rows: c.Rows, Cols: c.Cols}
	if len(c.RowPositions) > 0 {
		rows := append([]float64(nil), c.RowPositions...)
		g.RowPositions = &rows
	}
	if len(c.ColPositions) > 0 {
		cols := append([]float64(nil), c.ColPositions...)
		g.ColPositions = &cols
	}
	return g
}

func toAPIRectangles(rects []grid.Rect) []api.Rectangle {
	out := make([]api.Rectangle, len(rects))
	for i, r := range rects {
		out[i] = api.Rectangle{
			Row:    r.Row,
			Col:    r.Col,
			X:      r.X,
			Y:      r.Y,
			Width:  r.Width,
			Height: r.Height,
			Pixels: api.PixelRect{
				X:      r.Pixels.Min.X,
				Y:      r.Pixels.Min.Y,
				Width:  r.Pixels.Dx(),
				Height: r.Pixels.Dy(),
			},
		}
	}
	return out
}

// nonNil keeps empty divider lists as [] in JSON
func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

func toSplitResponse(c grid.Config, base string, tiles []render.Tile) api.SplitResponse {
	resp := api.SplitResponse{
		Archive: export.ArchiveName(base),
		Rows:    c.Rows,
		Cols:    c.Cols,
		Tiles:   make([]api.Tile, len(tiles)),
	}
	for i, t := range tiles {
		resp.Tiles[i] = api.Tile{
			Id:       t.ID,
			Row:      t.Row,
			Col:      t.Col,
			Filename: t.Filename,
			Width:    t.Width,
			Height:   t.Height,
			Size:     len(t.Data),
			Preview:  t.Preview,
		}
	}
	return resp
}

func toSessionResponse(s *session.Session) api.SessionResponse {
	cfg := s.Config()
	size := s.Size()

	resp := api.SessionResponse{
		Id:          uuid.MustParse(s.ID),
		Filename:    s.Filename,
		BaseName:    s.BaseName,
		Created:     s.Created,
		Width:       size.X,
		Height:      size.Y,
		Grid:        toAPIGrid(cfg),
		Rectangles:  toAPIRectangles(s.Rectangles()),
		RowDividers: nonNil(grid.Dividers(cfg, grid.AxisRow)),
		ColDividers: nonNil(grid.Dividers(cfg, grid.AxisCol)),
		Splitting:   s.Splitting(),
		TileCount:   len(s.Tiles()),
	}
	if axis, index, ok := s.Dragging(); ok {
		resp.Dragging = &api.DragTarget{Axis: api.Axis(axis.String()), Index: index}
	}
	return resp
}
