package render

import "fmt"

// RenderError reports a tile that could not be allocated or encoded.
// It fails the whole batch it belongs to. Row and Col are -1 for errors
// that do not belong to a tile.
type RenderError struct {
	Row int
	Col int
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	if e.Row < 0 || e.Col < 0 {
		return fmt.Sprintf("render %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("render tile row %d col %d: %s: %v", e.Row+1, e.Col+1, e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// DecodeError reports a source image that could not be loaded or cropped
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s image: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
