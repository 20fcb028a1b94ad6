package xlflat

import "fmt"

// MergeRegion is an inclusive rectangle of cells sharing the value of its
// top-left (anchor) cell.
type MergeRegion struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// ParseMergeRegion parses an A1 range such as "A1:B2".
func ParseMergeRegion(s string) (MergeRegion, error) {
	area, err := ParseAreaRef(s)
	if err != nil {
		return MergeRegion{}, fmt.Errorf("parse merge region: %w", err)
	}
	return MergeRegion{
		StartRow: area.First.Row,
		StartCol: area.First.Col,
		EndRow:   area.Last.Row,
		EndCol:   area.Last.Col,
	}, nil
}

// Anchor returns the region's top-left cell.
func (m MergeRegion) Anchor() CellRef {
	return NewCellRef(m.StartRow, m.StartCol)
}

// Area returns the region as a cell area.
func (m MergeRegion) Area() AreaRef {
	return AreaRef{First: m.Anchor(), Last: NewCellRef(m.EndRow, m.EndCol)}
}

// Intersects reports whether two regions share at least one cell.
func (m MergeRegion) Intersects(o MergeRegion) bool {
	return m.StartRow <= o.EndRow && o.StartRow <= m.EndRow &&
		m.StartCol <= o.EndCol && o.StartCol <= m.EndCol
}

// String formats the region as "A1:B2".
func (m MergeRegion) String() string {
	return m.Area().String()
}

// ResolvedGrid is a read-only view of a Grid in which every address covered
// by a merge region reads as the region's anchor cell.
type ResolvedGrid struct {
	grid    *Grid
	anchors map[CellRef]CellRef // covered cell → anchor, anchors themselves excluded
}

// Resolve expands merge regions over g. Regions must not overlap; cells of a
// region outside the grid bounds are ignored.
func Resolve(g *Grid, merges []MergeRegion) *ResolvedGrid {
	rg := &ResolvedGrid{
		grid:    g,
		anchors: make(map[CellRef]CellRef),
	}
	b := g.Bounds()
	for _, m := range merges {
		anchor := m.Anchor()
		for row := max(m.StartRow, b.RowMin); row <= min(m.EndRow, b.RowMax); row++ {
			for col := max(m.StartCol, b.ColMin); col <= min(m.EndCol, b.ColMax); col++ {
				ref := NewCellRef(row, col)
				if ref != anchor {
					rg.anchors[ref] = anchor
				}
			}
		}
	}
	return rg
}

// Bounds returns the bounds of the underlying grid.
func (rg *ResolvedGrid) Bounds() Bounds { return rg.grid.Bounds() }

// Date1904 reports the serial date epoch of the underlying grid.
func (rg *ResolvedGrid) Date1904() bool { return rg.grid.Date1904() }

// Cell returns the resolved cell at (row, col). The merge anchor wins over
// whatever the covered cell holds; absent cells are blank.
func (rg *ResolvedGrid) Cell(row, col int) Cell {
	ref := NewCellRef(row, col)
	if anchor, ok := rg.anchors[ref]; ok {
		ref = anchor
	}
	c, _ := rg.grid.Cell(ref.Row, ref.Col)
	return c
}

// Text returns the resolved cell's header text, "" when absent.
func (rg *ResolvedGrid) Text(row, col int) string {
	return rg.Cell(row, col).Text()
}

// Merged reports whether (row, col) is covered by a region other than as its anchor.
func (rg *ResolvedGrid) Merged(row, col int) bool {
	_, ok := rg.anchors[NewCellRef(row, col)]
	return ok
}
