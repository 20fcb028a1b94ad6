package xlflat

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable tree of the header structure: stages,
// the roles inside them and each column's composite header.
// Useful for checking a workbook layout before converting it.
func (c *Converter) Describe(g *Grid, merges []MergeRegion) (string, error) {
	t, err := c.Flatten(g, merges)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Grid: %s, %d merges, %d data rows\n", g.Bounds(), len(merges), len(t.Rows))
	fmt.Fprintf(&b, "Stage policy: %s\n", c.opts.stagePolicy)

	cols := make(map[int]Column, len(t.Columns))
	for _, col := range t.Columns {
		cols[col.Index] = col
	}
	for i, stage := range t.Stages {
		fmt.Fprintf(&b, "stage %s\n", describeSegment(stage))
		for _, role := range t.Roles[i] {
			fmt.Fprintf(&b, "  role %s\n", describeSegment(role))
			for col := role.StartCol; col <= role.EndCol; col++ {
				describeColumn(&b, cols[col])
			}
		}
	}

	if id, ok := t.IdentifierColumn(); ok {
		fmt.Fprintf(&b, "Identifier column: %s (%s)\n", ColToName(id.Index), id.Field)
	} else {
		b.WriteString("Identifier column: none\n")
	}
	return b.String(), nil
}

func describeSegment(s Segment) string {
	label := s.Label
	if label == "" {
		label = "<none>"
	}
	return fmt.Sprintf("%s [%s:%s]", label, ColToName(s.StartCol), ColToName(s.EndCol))
}

func describeColumn(b *strings.Builder, col Column) {
	mark := ""
	if col.Identifier {
		mark = " (identifier)"
	}
	fmt.Fprintf(b, "    %s: %s%s\n", ColToName(col.Index), col.Header, mark)
}
