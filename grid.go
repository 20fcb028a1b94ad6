package xlflat

import "fmt"

// Header block layout, relative to Bounds.RowMin.
const (
	stageRow   = 0
	roleRow    = 1
	fieldRow   = 2
	headerRows = 3
)

// Bounds is an inclusive rectangle of grid addresses.
type Bounds struct {
	RowMin, RowMax int
	ColMin, ColMax int
}

// Area returns the bounds as a cell area.
func (b Bounds) Area() AreaRef {
	return AreaRef{
		First: NewCellRef(b.RowMin, b.ColMin),
		Last:  NewCellRef(b.RowMax, b.ColMax),
	}
}

// Contains reports whether (row, col) lies inside the bounds.
func (b Bounds) Contains(row, col int) bool {
	return b.Area().Contains(NewCellRef(row, col))
}

// Rows returns the number of rows covered.
func (b Bounds) Rows() int { return b.RowMax - b.RowMin + 1 }

// Cols returns the number of columns covered.
func (b Bounds) Cols() int { return b.ColMax - b.ColMin + 1 }

// String formats the bounds as an A1 range.
func (b Bounds) String() string {
	return b.Area().String()
}

// Grid is a sparse rectangle of cells. Missing addresses read as blank.
type Grid struct {
	bounds   Bounds
	cells    map[CellRef]Cell
	date1904 bool
}

// NewGrid creates an empty grid with the given bounds.
func NewGrid(b Bounds) *Grid {
	return &Grid{
		bounds: b,
		cells:  make(map[CellRef]Cell),
	}
}

// GridFromRows builds a grid anchored at A1 from plain values.
// Each value goes through NewCell; nil and "" leave the address empty.
func GridFromRows(rows [][]any) *Grid {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	g := NewGrid(Bounds{RowMax: len(rows) - 1, ColMax: width - 1})
	for r, row := range rows {
		for c, v := range row {
			if cell := NewCell(v); !cell.IsBlank() {
				g.cells[NewCellRef(r, c)] = cell
			}
		}
	}
	return g
}

// Bounds returns the declared bounds.
func (g *Grid) Bounds() Bounds { return g.bounds }

// Date1904 reports whether serial dates use the 1904 epoch.
func (g *Grid) Date1904() bool { return g.date1904 }

// SetDate1904 selects the serial date epoch.
func (g *Grid) SetDate1904(v bool) { g.date1904 = v }

// Set stores a cell. Addresses outside the bounds are rejected.
func (g *Grid) Set(row, col int, c Cell) error {
	if !g.bounds.Contains(row, col) {
		return fmt.Errorf("cell %s outside grid %s", NewCellRef(row, col), g.bounds)
	}
	g.cells[NewCellRef(row, col)] = c
	return nil
}

// Cell returns the cell at (row, col) and whether it was set.
func (g *Grid) Cell(row, col int) (Cell, bool) {
	c, ok := g.cells[NewCellRef(row, col)]
	return c, ok
}

// Len returns the number of stored cells.
func (g *Grid) Len() int { return len(g.cells) }
