package export

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"github.com/kiesman99/gridsplit/internal/render"
)

// ArchiveName returns the zip bundle name for a base filename
func ArchiveName(base string) string {
	return base + "_split.zip"
}

// WriteArchive bundles tiles into a zip archive written to w, one entry per
// tile in tile order. PNG data is already compressed, so entries are stored.
func WriteArchive(w io.Writer, tiles []render.Tile) error {
	zw := zip.NewWriter(w)
	now := time.Now()

	for _, t := range tiles {
		hdr := &zip.FileHeader{
			Name:     t.Filename,
			Method:   zip.Store,
			Modified: now,
		}
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", t.Filename, err)
		}
		if _, err := f.Write(t.Data); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", t.Filename, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}
