package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"
	"golang.org/x/image/draw"

	"github.com/kiesman99/gridsplit/pkg/grid"
)

// Raster encoding used for every tile and preview
const (
	Ext      = "png"
	MIMEType = "image/png"
)

// Options configures a Renderer
type Options struct {
	// Workers bounds the number of tiles encoded at once (0 = GOMAXPROCS)
	Workers int
	// Compression is passed to the PNG encoder
	Compression png.CompressionLevel
	// Logger receives per-batch diagnostics (nil = logrus standard logger)
	Logger logrus.FieldLogger
}

// Tile is one rendered slice of the source image
type Tile struct {
	ID       string
	Row      int
	Col      int
	Filename string
	Width    int
	Height   int
	Data     []byte
	Preview  string
}

// Renderer turns partition rectangles into encoded tiles
type Renderer struct {
	workers int
	encoder *png.Encoder
	log     logrus.FieldLogger
}

// New creates a new renderer instance
func New(opts Options) *Renderer {
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Renderer{
		workers: workers,
		encoder: &png.Encoder{
			CompressionLevel: opts.Compression,
			BufferPool:       &bufferPool{},
		},
		log: log,
	}
}

// Render copies every rectangle of src into its own PNG tile.
//
// The batch is all-or-nothing: an empty rectangle, a rectangle outside the
// source bounds or an encoding failure fails the whole call with a
// *RenderError and no tiles are returned. Tiles come back in rectangle order
// even though they are encoded concurrently.
func (r *Renderer) Render(ctx context.Context, src image.Image, rects []grid.Rect, baseFilename string) ([]Tile, error) {
	bounds := src.Bounds()
	size := image.Rect(0, 0, bounds.Dx(), bounds.Dy())

	for _, rect := range rects {
		if rect.Empty() {
			return nil, &RenderError{
				Row: rect.Row, Col: rect.Col, Op: "allocate",
				Err: fmt.Errorf("zero-area rectangle %v", rect.Pixels),
			}
		}
		if !rect.Pixels.In(size) {
			return nil, &RenderError{
				Row: rect.Row, Col: rect.Col, Op: "allocate",
				Err: fmt.Errorf("rectangle %v outside %dx%d source", rect.Pixels, size.Dx(), size.Dy()),
			}
		}
	}

	r.log.WithFields(logrus.Fields{
		"tiles":   len(rects),
		"source":  fmt.Sprintf("%dx%d", size.Dx(), size.Dy()),
		"workers": r.workers,
	}).Debug("rendering tiles")

	mapper := iter.Mapper[grid.Rect, Tile]{MaxGoroutines: r.workers}
	tiles, err := mapper.MapErr(rects, func(rect *grid.Rect) (Tile, error) {
		if err := ctx.Err(); err != nil {
			return Tile{}, err
		}
		return r.renderTile(src, *rect, baseFilename)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	return tiles, nil
}

func (r *Renderer) renderTile(src image.Image, rect grid.Rect, baseFilename string) (Tile, error) {
	w, h := rect.Pixels.Dx(), rect.Pixels.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	// rectangles are relative to the image origin, which need not be (0,0)
	sr := rect.Pixels.Add(src.Bounds().Min)
	draw.Copy(dst, image.Point{}, src, sr, draw.Src, nil)

	var buf bytes.Buffer
	if err := r.encoder.Encode(&buf, dst); err != nil {
		return Tile{}, &RenderError{Row: rect.Row, Col: rect.Col, Op: "encode", Err: err}
	}
	data := buf.Bytes()

	return Tile{
		ID:       TileID(rect.Row, rect.Col),
		Row:      rect.Row,
		Col:      rect.Col,
		Filename: TileFilename(baseFilename, rect.Row, rect.Col),
		Width:    w,
		Height:   h,
		Data:     data,
		Preview:  DataURL(data),
	}, nil
}

// TileID returns the stable identifier of the tile at (row, col)
func TileID(row, col int) string {
	return fmt.Sprintf("row-%d-col-%d", row, col)
}

// TileFilename returns the 1-indexed download name of the tile at (row, col)
func TileFilename(base string, row, col int) string {
	return fmt.Sprintf("%s_row%d_col%d.%s", base, row+1, col+1, Ext)
}

// DataURL embeds PNG bytes in a data: URL for previews
func DataURL(data []byte) string {
	return "data:" + MIMEType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
