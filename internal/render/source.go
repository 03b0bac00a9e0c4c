package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	// imaging registers png, jpeg, gif, bmp and tiff; webp is added here
	_ "golang.org/x/image/webp"
)

// DefaultBaseName is used when a filename has no usable stem
const DefaultBaseName = "image"

// Decode reads a source image, applying its EXIF orientation
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Op: "decode", Err: err}
	}

	if b := img.Bounds(); b.Empty() {
		return nil, &DecodeError{Op: "decode", Err: errors.New("image has no pixels")}
	}
	return img, nil
}

// Crop returns the part of img inside rect, where rect is relative to the
// top-left corner of img. The crop rectangle is chosen by the caller.
func Crop(img image.Image, rect image.Rectangle) (image.Image, error) {
	bounds := img.Bounds()
	abs := rect.Add(bounds.Min).Intersect(bounds)
	if abs.Empty() {
		return nil, &DecodeError{
			Op:  "crop",
			Err: fmt.Errorf("crop %v does not overlap %dx%d image", rect, bounds.Dx(), bounds.Dy()),
		}
	}
	return imaging.Crop(img, abs), nil
}

// BaseName derives the tile filename stem from an uploaded filename:
// the directory is dropped and everything from the first dot is cut.
func BaseName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "/" {
		return DefaultBaseName
	}
	return name
}
