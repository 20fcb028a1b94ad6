package xlflat

import (
	"fmt"
	"strconv"
	"strings"
)

// CellRef is a 0-based grid address.
type CellRef struct {
	Row int
	Col int
}

// NewCellRef creates a CellRef.
func NewCellRef(row, col int) CellRef {
	return CellRef{Row: row, Col: col}
}

// ParseCellRef parses an A1-style reference like "B3" or "$B$3".
// A sheet prefix ("Sheet1!B3") is accepted and dropped.
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		s = s[idx+1:]
	}
	name := strings.ReplaceAll(s, "$", "")

	i := 0
	for i < len(name) && isAlpha(name[i]) {
		i++
	}
	if i == 0 || i == len(name) {
		return CellRef{}, fmt.Errorf("invalid cell reference: %q", s)
	}

	col, err := NameToCol(name[:i])
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	row, err := strconv.Atoi(name[i:])
	if err != nil || row < 1 {
		return CellRef{}, fmt.Errorf("invalid row in cell reference: %q", s)
	}
	return CellRef{Row: row - 1, Col: col}, nil
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// String formats the reference as "A1".
func (c CellRef) String() string {
	return ColToName(c.Col) + strconv.Itoa(c.Row+1)
}

// ColToName converts a 0-based column index to a column name.
// 0→"A", 25→"Z", 26→"AA"
func ColToName(col int) string {
	result := ""
	col++
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// NameToCol converts a column name to a 0-based column index.
func NameToCol(name string) (int, error) {
	name = strings.ToUpper(name)
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, nil
}

// AreaRef is a rectangle given by its top-left and bottom-right cells.
type AreaRef struct {
	First CellRef
	Last  CellRef
}

// ParseAreaRef parses "A1:C5". A single cell ("B2") yields a 1x1 area.
func ParseAreaRef(s string) (AreaRef, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)

	first, err := ParseCellRef(parts[0])
	if err != nil {
		return AreaRef{}, fmt.Errorf("invalid area reference %q: %w", s, err)
	}
	if len(parts) == 1 {
		return AreaRef{First: first, Last: first}, nil
	}
	last, err := ParseCellRef(parts[1])
	if err != nil {
		return AreaRef{}, fmt.Errorf("invalid area reference %q: %w", s, err)
	}
	return AreaRef{First: first, Last: last}, nil
}

// String formats the area as "A1:C5".
func (a AreaRef) String() string {
	return a.First.String() + ":" + a.Last.String()
}

// Contains reports whether ref lies inside the area.
func (a AreaRef) Contains(ref CellRef) bool {
	return ref.Row >= a.First.Row && ref.Row <= a.Last.Row &&
		ref.Col >= a.First.Col && ref.Col <= a.Last.Col
}
