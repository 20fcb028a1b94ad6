package xlflat

import (
	"fmt"
	"strings"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // conversion output would be wrong
	SeverityWarning                 // conversion works but may surprise
)

// ValidationIssue is a single problem found in a grid and its merge list.
type ValidationIssue struct {
	Severity Severity
	Ref      string // A1 cell or range the issue refers to, empty for grid-wide issues
	Message  string
}

// String formats the issue as "[ERROR] A1:B2: message" or "[WARN] message".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	if v.Ref == "" {
		return fmt.Sprintf("[%s] %s", sev, v.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.Ref, v.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []ValidationIssue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CheckStageRule compiles a stage rule against the rule environment without
// building a Converter.
func CheckStageRule(rule string) error {
	_, err := compileStageRule(rule, newKeywordSet(DefaultStageKeywords))
	return err
}

// Validate checks the caller-side preconditions of Flatten: merge regions
// must be well formed, inside the grid and pairwise disjoint. It also warns
// about header blocks the converter can only handle with fallbacks.
func (c *Converter) Validate(g *Grid, merges []MergeRegion) []ValidationIssue {
	var issues []ValidationIssue
	issues = append(issues, validateMerges(g.Bounds(), merges)...)
	issues = append(issues, c.validateHeader(g, merges)...)
	return issues
}

func validateMerges(b Bounds, merges []MergeRegion) []ValidationIssue {
	var issues []ValidationIssue
	grid := b.Area()
	for i, m := range merges {
		if m.EndRow < m.StartRow || m.EndCol < m.StartCol {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Ref:      m.String(),
				Message:  "merge region ends before it starts",
			})
			continue
		}
		if area := m.Area(); !grid.Contains(area.First) || !grid.Contains(area.Last) {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Ref:      m.String(),
				Message:  fmt.Sprintf("merge region extends beyond grid %s", b),
			})
		}
		for _, o := range merges[i+1:] {
			if m.Intersects(o) {
				issues = append(issues, ValidationIssue{
					Severity: SeverityError,
					Ref:      m.String(),
					Message:  fmt.Sprintf("merge region overlaps %s", o),
				})
			}
		}
	}
	return issues
}

func (c *Converter) validateHeader(g *Grid, merges []MergeRegion) []ValidationIssue {
	b := g.Bounds()
	if b.Rows() < headerRows {
		return []ValidationIssue{{
			Severity: SeverityError,
			Message:  fmt.Sprintf("grid has %d rows, the header block needs %d", max(b.Rows(), 0), headerRows),
		}}
	}

	var issues []ValidationIssue
	rg := Resolve(g, merges)
	layout, err := c.prop.Propagate(rg)
	if err != nil {
		return append(issues, ValidationIssue{Severity: SeverityError, Message: err.Error()})
	}
	named := 0
	for _, s := range layout.Stages {
		if s.Label != "" {
			named++
		}
	}
	if named == 0 {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("stage policy %s found no stage in row %d", c.opts.stagePolicy, b.RowMin+stageRow+1),
		})
	}
	if findIdentifierColumn(layout.Columns, c.opts.identifierLabels) < 0 {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("no identifier column matches %s", strings.Join(c.opts.identifierLabels, ", ")),
		})
	}
	for _, l := range layout.Columns {
		if l.Stage == "" && l.Field == "" {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Ref:      ColToName(l.Col),
				Message:  fmt.Sprintf("column has no header labels, using %s", placeholderHeader(l.Col)),
			})
		}
	}
	return issues
}
