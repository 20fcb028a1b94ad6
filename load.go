package xlflat

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// builtinNumFmts maps the built-in number format ids that matter for decimal
// inference to their format codes.
var builtinNumFmts = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	48: "##0.0E+0",
	49: "@",
}

func isBuiltinDateFormat(id int) bool {
	switch id {
	case 14, 15, 16, 17, 18, 19, 20, 21, 22, 27, 30, 36, 50, 57, 58:
		return true
	default:
		return false
	}
}

// isDateFormatCode reports whether a custom format code renders a date.
// Quoted literals and bracketed sections ([Red], [$-419]) are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range code {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	s := strings.ToLower(b.String())
	return strings.ContainsAny(s, "dmy") && !strings.ContainsAny(s, "0#")
}

// workbookLoader reads the first worksheet of a workbook into a Grid.
type workbookLoader struct {
	displayText bool
	logger      *slog.Logger
}

// LoadFile opens an xlsx file and loads its first sheet.
func LoadFile(path string, opts ...Option) (*Grid, []MergeRegion, error) {
	o := buildOptions(opts)
	return workbookLoader{displayText: o.displayText, logger: o.logger}.loadFile(path)
}

// LoadReader reads an xlsx workbook from r and loads its first sheet.
func LoadReader(r io.Reader, opts ...Option) (*Grid, []MergeRegion, error) {
	o := buildOptions(opts)
	return workbookLoader{displayText: o.displayText, logger: o.logger}.loadReader(r)
}

// LoadWorkbook loads the first sheet of an already opened workbook.
func LoadWorkbook(f *excelize.File, opts ...Option) (*Grid, []MergeRegion, error) {
	o := buildOptions(opts)
	return workbookLoader{displayText: o.displayText, logger: o.logger}.load(f, "")
}

// LoadFile loads the first sheet of path using the converter's options.
func (c *Converter) LoadFile(path string) (*Grid, []MergeRegion, error) {
	return workbookLoader{displayText: c.opts.displayText, logger: c.opts.logger}.loadFile(path)
}

// LoadReader loads the first sheet of a workbook read from r.
func (c *Converter) LoadReader(r io.Reader) (*Grid, []MergeRegion, error) {
	return workbookLoader{displayText: c.opts.displayText, logger: c.opts.logger}.loadReader(r)
}

func (l workbookLoader) loadFile(path string) (*Grid, []MergeRegion, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, &SourceReadError{Path: path, Err: err}
	}
	defer f.Close()
	return l.load(f, path)
}

func (l workbookLoader) loadReader(r io.Reader) (*Grid, []MergeRegion, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, &SourceReadError{Err: err}
	}
	defer f.Close()
	return l.load(f, "")
}

func (l workbookLoader) load(f *excelize.File, path string) (*Grid, []MergeRegion, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &SourceReadError{Path: path, Err: ErrNoSheet}
	}
	sheet := sheets[0]
	fail := func(err error) (*Grid, []MergeRegion, error) {
		return nil, nil, &SourceReadError{Path: path, Sheet: sheet, Err: err}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return fail(fmt.Errorf("read rows: %w", err))
	}
	mergeCells, err := f.GetMergeCells(sheet)
	if err != nil {
		return fail(fmt.Errorf("read merged cells: %w", err))
	}

	b := Bounds{RowMax: len(rows) - 1, ColMax: -1}
	for _, row := range rows {
		b.ColMax = max(b.ColMax, len(row)-1)
	}
	merges := make([]MergeRegion, 0, len(mergeCells))
	for _, mc := range mergeCells {
		m, err := ParseMergeRegion(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return fail(err)
		}
		merges = append(merges, m)
		b.RowMax = max(b.RowMax, m.EndRow)
		b.ColMax = max(b.ColMax, m.EndCol)
	}
	if b.RowMax < 0 || b.ColMax < 0 {
		return fail(ErrEmptySheet)
	}

	g := NewGrid(b)
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		g.SetDate1904(*props.Date1904)
	}
	for r, row := range rows {
		for c, raw := range row {
			if raw == "" {
				continue
			}
			cell, err := l.readCell(f, sheet, r, c, raw)
			if err != nil {
				return fail(err)
			}
			if err := g.Set(r, c, cell); err != nil {
				return fail(err)
			}
		}
	}

	l.logger.Debug("loaded sheet",
		"path", path,
		"sheet", sheet,
		"bounds", b.String(),
		"cells", g.Len(),
		"merges", len(merges),
		"date1904", g.Date1904(),
	)
	return g, merges, nil
}

// readCell types one raw cell value using its cell type and number format.
func (l workbookLoader) readCell(f *excelize.File, sheet string, row, col int, raw string) (Cell, error) {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return Cell{}, err
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return Cell{}, fmt.Errorf("cell %s type: %w", name, err)
	}

	var cell Cell
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		cell = TextCell(raw)
	case excelize.CellTypeBool:
		cell = TextCell(strings.ToUpper(strconv.FormatBool(raw == "1" || strings.EqualFold(raw, "true"))))
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			cell = Cell{Value: t, Kind: KindDate}
		} else {
			cell = TextCell(raw)
		}
	default:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			cell = TextCell(raw)
			break
		}
		id, code := l.numberFormat(f, sheet, name)
		if isBuiltinDateFormat(id) || (code != "" && isDateFormatCode(code)) {
			cell = Cell{Value: v, Kind: KindDate, Format: code}
		} else {
			cell = NumberCell(v, code)
		}
	}

	if l.displayText {
		if shown, err := f.GetCellValue(sheet, name); err == nil && shown != raw {
			cell.Display = shown
		}
	}
	return cell, nil
}

// numberFormat returns the built-in format id and the format code of a cell.
func (l workbookLoader) numberFormat(f *excelize.File, sheet, name string) (int, string) {
	styleID, err := f.GetCellStyle(sheet, name)
	if err != nil || styleID == 0 {
		return 0, ""
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return 0, ""
	}
	if style.CustomNumFmt != nil {
		return style.NumFmt, *style.CustomNumFmt
	}
	return style.NumFmt, builtinNumFmts[style.NumFmt]
}
