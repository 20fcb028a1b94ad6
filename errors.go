package xlflat

import (
	"errors"
	"fmt"
)

// ErrNoSheet indicates the workbook has no worksheet to convert.
var ErrNoSheet = errors.New("workbook has no sheets")

// ErrEmptySheet indicates the first worksheet holds no cells.
var ErrEmptySheet = errors.New("sheet is empty")

// SourceReadError reports that a grid could not be built from the source workbook.
type SourceReadError struct {
	Path  string // empty when read from a stream
	Sheet string
	Err   error
}

func (e *SourceReadError) Error() string {
	src := e.Path
	if src == "" {
		src = "<reader>"
	}
	if e.Sheet != "" {
		return fmt.Sprintf("read source %s (sheet %q): %v", src, e.Sheet, e.Err)
	}
	return fmt.Sprintf("read source %s: %v", src, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}
