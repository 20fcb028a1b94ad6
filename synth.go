package xlflat

import (
	"strconv"
	"strings"
)

// headerSynthesizer builds one composite header per column.
type headerSynthesizer struct {
	separator string
	generic   []string
}

func newHeaderSynthesizer(o *Options) *headerSynthesizer {
	return &headerSynthesizer{separator: o.headerSeparator, generic: o.genericFields}
}

func (s *headerSynthesizer) isGeneric(field string) bool {
	for _, g := range s.generic {
		if strings.EqualFold(strings.TrimSpace(g), field) {
			return true
		}
	}
	return false
}

// Composite returns the header for one column, built from the labels of the
// segments it lies in. A column outside any labelled stage falls back to its
// own row 0 value and field. The result is never empty.
func (s *headerSynthesizer) Composite(l ColumnLabels) string {
	if l.StageLabel == "" {
		return s.fallback(l)
	}
	parts := []string{l.StageLabel}
	if l.RoleLabel != "" && l.RoleLabel != l.StageLabel {
		parts = append(parts, l.RoleLabel)
	}
	if l.Field != "" && l.Field != l.StageLabel && l.Field != l.RoleLabel && !s.isGeneric(l.Field) {
		parts = append(parts, l.Field)
	}
	return strings.Join(parts, s.separator)
}

// fallback builds the header of an unstaged column. Its display Stage is the
// column's own row 0 value, since the segment label is empty.
func (s *headerSynthesizer) fallback(l ColumnLabels) string {
	row0 := l.Stage
	switch {
	case row0 != "":
		if l.Field != "" && l.Field != row0 && !s.isGeneric(l.Field) {
			return row0 + s.separator + l.Field
		}
		return row0
	case l.Field != "":
		return l.Field
	default:
		return placeholderHeader(l.Col)
	}
}

func placeholderHeader(col int) string {
	return "column_" + strconv.Itoa(col)
}
