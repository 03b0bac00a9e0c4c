package session

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/kiesman99/gridsplit/internal/render"
	"github.com/kiesman99/gridsplit/pkg/grid"
)

var ErrSplitInProgress = errors.New("a split is already in progress")

// Renderer renders partition rectangles into tiles; *render.Renderer
// satisfies it.
type Renderer interface {
	Render(ctx context.Context, src image.Image, rects []grid.Rect, baseFilename string) ([]render.Tile, error)
}

// Session is the editing state of one uploaded image: the current (possibly
// cropped) source, its grid and the tiles of the last split. It is safe for
// concurrent use.
type Session struct {
	ID       string
	Filename string
	BaseName string
	Created  time.Time

	mu        sync.Mutex
	source    image.Image
	config    grid.Config
	drag      grid.Drag
	tiles     []render.Tile
	splitting bool
	touched   time.Time
}

// New starts a session for a decoded image with the default 3x3 grid
func New(id, filename string, src image.Image) *Session {
	now := time.Now()
	return &Session{
		ID:       id,
		Filename: filename,
		BaseName: render.BaseName(filename),
		Created:  now,
		source:   src,
		config:   grid.DefaultConfig(),
		touched:  now,
	}
}

// Size returns the current source dimensions
func (s *Session) Size() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source.Bounds().Size()
}

// Source returns the current source image
func (s *Session) Source() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Config returns the current grid
func (s *Session) Config() grid.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// SetCount changes the row or column count (clamped) and invalidates the
// custom positions of that axis. A drag in progress is abandoned.
func (s *Session) SetCount(axis grid.Axis, n int) grid.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.drag.End()
	s.config = s.config.WithCount(axis, n)
	return s.config
}

// BeginDrag starts dragging divider index of axis
func (s *Session) BeginDrag(axis grid.Axis, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.drag.Begin(s.config, axis, index)
}

// Drag moves the divider being dragged to percent
func (s *Session) Drag(percent float64) (grid.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	cfg, err := s.drag.Move(s.config, percent)
	if err != nil {
		return s.config, err
	}
	s.config = cfg
	return cfg, nil
}

// EndDrag finishes the current drag, if any
func (s *Session) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.drag.End()
}

// Dragging reports the divider being dragged, if any
func (s *Session) Dragging() (grid.Axis, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Active()
}

// Rectangles partitions the current source with the current grid
func (s *Session) Rectangles() []grid.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	size := s.source.Bounds().Size()
	return grid.ComputeRectangles(size.X, size.Y, s.config)
}

// Crop replaces the source with the part inside rect. Custom divider
// positions and previous tiles no longer apply and are dropped.
func (s *Session) Crop(rect image.Rectangle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.splitting {
		return ErrSplitInProgress
	}
	cropped, err := render.Crop(s.source, rect)
	if err != nil {
		return err
	}

	s.source = cropped
	s.config.RowPositions = nil
	s.config.ColPositions = nil
	s.drag.End()
	s.tiles = nil
	return nil
}

// Split renders the current grid. Only one split may run at a time; a second
// call returns ErrSplitInProgress until the first settles. On failure the
// tiles of the previous split are kept.
func (s *Session) Split(ctx context.Context, r Renderer) ([]render.Tile, error) {
	s.mu.Lock()
	if s.splitting {
		s.mu.Unlock()
		return nil, ErrSplitInProgress
	}
	if err := s.config.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.splitting = true
	s.touch()
	src, cfg, base := s.source, s.config, s.BaseName
	s.mu.Unlock()

	size := src.Bounds().Size()
	tiles, err := r.Render(ctx, src, grid.ComputeRectangles(size.X, size.Y, cfg), base)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.splitting = false
	if err != nil {
		return nil, err
	}
	s.tiles = tiles
	return tiles, nil
}

// Splitting reports whether a split is in flight
func (s *Session) Splitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.splitting
}

// Tiles returns the tiles of the last successful split
func (s *Session) Tiles() []render.Tile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tiles
}

// Reset discards the tiles of the last split
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.tiles = nil
}

// LastUsed returns when the session was last modified
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) touch() {
	s.touched = time.Now()
}
