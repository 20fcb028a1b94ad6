package xlflat

// Column describes one output column.
type Column struct {
	Index      int    // absolute grid column
	Stage      string // propagated stage label
	Role       string // propagated role label
	Field      string // resolved field-row value
	Header     string // composite header, never empty
	Identifier bool   // exempt from thousands grouping
}

// Table is the flattened form of a grid.
type Table struct {
	Columns   []Column
	Stages    []Segment
	Roles     [][]Segment // Roles[i] partitions Stages[i]
	Rows      [][]string // formatted data rows, one field per column
	delimiter rune
}

// HeaderRows returns the four header rows: stage, role, field and composite.
func (t *Table) HeaderRows() [][]string {
	rows := make([][]string, 4)
	for i := range rows {
		rows[i] = make([]string, len(t.Columns))
	}
	for i, c := range t.Columns {
		rows[0][i] = c.Stage
		rows[1][i] = c.Role
		rows[2][i] = c.Field
		rows[3][i] = c.Header
	}
	return rows
}

// Headers returns the composite header of every column.
func (t *Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Header
	}
	return out
}

// Records returns the header rows followed by the data rows.
func (t *Table) Records() [][]string {
	return append(t.HeaderRows(), t.Rows...)
}

// IdentifierColumn returns the identifier column, if one was found.
func (t *Table) IdentifierColumn() (Column, bool) {
	for _, c := range t.Columns {
		if c.Identifier {
			return c, true
		}
	}
	return Column{}, false
}

// String returns the delimited export of the table.
func (t *Table) String() string {
	d := t.delimiter
	if d == 0 {
		d = ';'
	}
	return Serialize(t.Records(), d)
}
