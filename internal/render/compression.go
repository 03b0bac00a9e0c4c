package render

import (
	"fmt"
	"image/png"
	"strings"
)

// ParseCompression maps a config name onto a PNG compression level.
// The empty string selects the encoder default.
func ParseCompression(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "speed", "fast":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	default:
		return png.DefaultCompression, fmt.Errorf("unknown compression %q (use default, none, speed or best)", name)
	}
}
