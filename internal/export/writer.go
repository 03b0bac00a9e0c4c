package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kiesman99/gridsplit/internal/render"
)

// Writer stores a named blob somewhere a user can fetch it from
type Writer interface {
	Write(ctx context.Context, name string, data []byte) error
}

// WriteTiles writes every tile under its filename and returns the names
// written, in tile order. It stops at the first failure.
func WriteTiles(ctx context.Context, w Writer, tiles []render.Tile) ([]string, error) {
	names := make([]string, 0, len(tiles))
	for _, t := range tiles {
		if err := ctx.Err(); err != nil {
			return names, err
		}
		if err := w.Write(ctx, t.Filename, t.Data); err != nil {
			return names, fmt.Errorf("failed to write %s: %w", t.Filename, err)
		}
		names = append(names, t.Filename)
	}
	return names, nil
}

// DirWriter writes files into a directory of an afero filesystem
type DirWriter struct {
	fs  afero.Fs
	dir string
}

// NewDirWriter creates the directory if needed. A nil fs means the OS filesystem.
func NewDirWriter(fs afero.Fs, dir string) (*DirWriter, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &DirWriter{fs: fs, dir: dir}, nil
}

// Write implements Writer
func (d *DirWriter) Write(_ context.Context, name string, data []byte) error {
	return afero.WriteFile(d.fs, d.Path(name), data, 0o644)
}

// Path returns where name is written
func (d *DirWriter) Path(name string) string {
	return filepath.Join(d.dir, filepath.Base(name))
}

// Dir returns the output directory
func (d *DirWriter) Dir() string {
	return d.dir
}

var _ Writer = (*DirWriter)(nil)

