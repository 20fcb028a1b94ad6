package xlflat

import (
	"fmt"
	"strings"
)

// StagePolicy decides which header row 0 values start a new stage.
type StagePolicy int

const (
	StageAnyNonEmpty StagePolicy = iota // every non-empty value starts a stage
	StageKeywordOnly                    // only values containing a stage keyword
	StageExpression                     // a compiled expr-lang predicate decides
)

// String returns the policy name used in profiles and flags.
func (p StagePolicy) String() string {
	switch p {
	case StageAnyNonEmpty:
		return "any-non-empty"
	case StageKeywordOnly:
		return "keyword-only"
	case StageExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// ParseStagePolicy parses a policy name as produced by String.
func ParseStagePolicy(s string) (StagePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any-non-empty", "any":
		return StageAnyNonEmpty, nil
	case "keyword-only", "keyword":
		return StageKeywordOnly, nil
	case "expression", "expr":
		return StageExpression, nil
	}
	return StageAnyNonEmpty, fmt.Errorf("unknown stage policy %q (must be any-non-empty, keyword-only or expression)", s)
}

// keywordSet matches values containing any keyword, ignoring case.
type keywordSet []string

func newKeywordSet(words []string) keywordSet {
	ks := make(keywordSet, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			ks = append(ks, w)
		}
	}
	return ks
}

// Match reports whether v contains one of the keywords.
func (ks keywordSet) Match(v string) bool {
	if v == "" {
		return false
	}
	lv := strings.ToLower(v)
	for _, k := range ks {
		if strings.Contains(lv, k) {
			return true
		}
	}
	return false
}

func (ks keywordSet) words() []string {
	return append([]string(nil), ks...)
}

// Segment is a maximal run of columns sharing one header label.
type Segment struct {
	StartCol int
	EndCol   int
	Label    string
}

// Contains reports whether col lies in the segment.
func (s Segment) Contains(col int) bool {
	return col >= s.StartCol && col <= s.EndCol
}

// String formats the segment as `A:B "label"`.
func (s Segment) String() string {
	return fmt.Sprintf("%s:%s %q", ColToName(s.StartCol), ColToName(s.EndCol), s.Label)
}

// boundaryFunc reports whether col opens a new segment and the label it carries.
type boundaryFunc func(col int) (label string, start bool, err error)

// segmentFold is the accumulator threaded through a column fold.
type segmentFold struct {
	done []Segment
	open Segment
}

func (f segmentFold) step(col int, label string, start bool) segmentFold {
	opened := f.open.EndCol >= f.open.StartCol
	// A start repeating the open label continues the run; merged header
	// cells resolve to the same label in every covered column.
	if !start || (opened && label == f.open.Label) {
		f.open.EndCol = col
		return f
	}
	if opened {
		f.done = append(f.done, f.open)
	}
	f.open = Segment{StartCol: col, EndCol: col, Label: label}
	return f
}

func (f segmentFold) close() []Segment {
	if f.open.EndCol >= f.open.StartCol {
		return append(f.done, f.open)
	}
	return f.done
}

// foldSegments partitions [from..to] into maximal runs sharing one label.
// Columns before the first boundary form a leading segment with an empty label.
func foldSegments(from, to int, boundary boundaryFunc) ([]Segment, error) {
	acc := segmentFold{open: Segment{StartCol: from, EndCol: from - 1}}
	for col := from; col <= to; col++ {
		label, start, err := boundary(col)
		if err != nil {
			return nil, err
		}
		acc = acc.step(col, label, start)
	}
	return acc.close(), nil
}

// ColumnLabels are the header labels of one column. Stage and Role are the
// display values, where the column's own value wins; StageLabel and RoleLabel
// are the labels of the segments the column lies in.
type ColumnLabels struct {
	Col        int
	Stage      string
	Role       string
	Field      string
	StageLabel string
	RoleLabel  string
}

// HeaderLayout is the result of header propagation.
type HeaderLayout struct {
	Stages  []Segment
	Roles   [][]Segment // Roles[i] partitions Stages[i]
	Columns []ColumnLabels
}

// StageFor returns the stage segment containing col.
func (h *HeaderLayout) StageFor(col int) (Segment, bool) {
	for _, s := range h.Stages {
		if s.Contains(col) {
			return s, true
		}
	}
	return Segment{}, false
}

// propagator forward-fills stage and role labels across columns.
type propagator struct {
	policy   StagePolicy
	keywords keywordSet
	rule     *stageRule
}

func newPropagator(o *Options) (*propagator, error) {
	p := &propagator{
		policy:   o.stagePolicy,
		keywords: newKeywordSet(o.stageKeywords),
	}
	if p.policy == StageExpression {
		rule, err := compileStageRule(o.stageRule, p.keywords)
		if err != nil {
			return nil, err
		}
		p.rule = rule
	}
	return p, nil
}

// isStageStart applies the policy to a resolved row 0 value.
func (p *propagator) isStageStart(value string, col int) (bool, error) {
	switch p.policy {
	case StageKeywordOnly:
		return p.keywords.Match(value), nil
	case StageExpression:
		return p.rule.Match(value, col)
	default:
		return value != "", nil
	}
}

// StageSegments partitions the grid columns by header row 0.
func (p *propagator) StageSegments(rg *ResolvedGrid) ([]Segment, error) {
	b := rg.Bounds()
	row := b.RowMin + stageRow
	return foldSegments(b.ColMin, b.ColMax, func(col int) (string, bool, error) {
		v := rg.Text(row, col)
		start, err := p.isStageStart(v, col)
		return v, start, err
	})
}

// RoleSegments partitions one stage segment by header row 1. A row 1 value that
// is itself a stage keyword ends the running role without starting a new one.
func (p *propagator) RoleSegments(rg *ResolvedGrid, stage Segment) ([]Segment, error) {
	row := rg.Bounds().RowMin + roleRow
	return foldSegments(stage.StartCol, stage.EndCol, func(col int) (string, bool, error) {
		v := rg.Text(row, col)
		switch {
		case v == "":
			return "", false, nil
		case p.keywords.Match(v):
			return "", true, nil
		default:
			return v, true, nil
		}
	})
}

// Propagate computes stage and role segments and the per-column labels.
// A column's own non-empty value takes precedence over the propagated one
// in the display labels only.
func (p *propagator) Propagate(rg *ResolvedGrid) (*HeaderLayout, error) {
	stages, err := p.StageSegments(rg)
	if err != nil {
		return nil, err
	}
	b := rg.Bounds()
	layout := &HeaderLayout{
		Stages:  stages,
		Roles:   make([][]Segment, len(stages)),
		Columns: make([]ColumnLabels, 0, max(b.Cols(), 0)),
	}
	for i, stage := range stages {
		roles, err := p.RoleSegments(rg, stage)
		if err != nil {
			return nil, err
		}
		layout.Roles[i] = roles
		for _, role := range roles {
			for col := role.StartCol; col <= role.EndCol; col++ {
				layout.Columns = append(layout.Columns, ColumnLabels{
					Col:        col,
					Stage:      firstNonEmpty(rg.Text(b.RowMin+stageRow, col), stage.Label),
					Role:       firstNonEmpty(rg.Text(b.RowMin+roleRow, col), role.Label),
					Field:      rg.Text(b.RowMin+fieldRow, col),
					StageLabel: stage.Label,
					RoleLabel:  role.Label,
				})
			}
		}
	}
	return layout, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
