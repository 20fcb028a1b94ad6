package xlflat

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CellKind is the declared type of a cell's value.
type CellKind int

const (
	KindBlank CellKind = iota
	KindText
	KindNumber
	KindDate
)

// String returns a human-readable name for the CellKind.
func (k CellKind) String() string {
	switch k {
	case KindBlank:
		return "Blank"
	case KindText:
		return "Text"
	case KindNumber:
		return "Number"
	case KindDate:
		return "Date"
	default:
		return "Unknown"
	}
}

// Cell holds a single grid value.
type Cell struct {
	Value   any      // string, float64, time.Time or nil
	Kind    CellKind // declared value type
	Format  string   // number format code, used only to infer decimal places
	Display string   // pre-rendered text, if the source had one
}

// TextCell creates a text cell.
func TextCell(s string) Cell {
	return Cell{Value: s, Kind: KindText}
}

// NumberCell creates a numeric cell with an optional format code.
func NumberCell(v float64, format string) Cell {
	return Cell{Value: v, Kind: KindNumber, Format: format}
}

// DateCell creates a date cell from a serial day code.
func DateCell(serial float64) Cell {
	return Cell{Value: serial, Kind: KindDate}
}

// NewCell builds a Cell from a plain Go value, inferring its kind.
func NewCell(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return x
	case string:
		if x == "" {
			return Cell{}
		}
		return TextCell(x)
	case time.Time:
		return Cell{Value: x, Kind: KindDate}
	}
	if f, ok := toFloat(v); ok {
		return NumberCell(f, "")
	}
	return TextCell(fmt.Sprint(v))
}

// IsBlank reports whether the cell carries no value.
func (c Cell) IsBlank() bool {
	if c.Display != "" {
		return false
	}
	switch v := c.Value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

// Text returns the cell as header text: the display string when present,
// otherwise the string form of the raw value, trimmed.
func (c Cell) Text() string {
	if c.Display != "" {
		return strings.TrimSpace(c.Display)
	}
	return strings.TrimSpace(rawString(c.Value))
}

// rawString renders a raw value without any locale formatting.
func rawString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(dateLayout)
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// toFloat converts any numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
