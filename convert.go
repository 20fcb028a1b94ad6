package xlflat

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Converter flattens grids into delimited tables. It holds no per-run state
// and is safe for concurrent use as long as each call gets its own Grid.
type Converter struct {
	opts  *Options
	prop  *propagator
	synth *headerSynthesizer
}

// NewConverter creates a Converter. It fails only when the stage rule
// expression does not compile.
func NewConverter(opts ...Option) (*Converter, error) {
	o := buildOptions(opts)
	prop, err := newPropagator(o)
	if err != nil {
		return nil, err
	}
	return &Converter{
		opts:  o,
		prop:  prop,
		synth: newHeaderSynthesizer(o),
	}, nil
}

// ConvertFile reads the first sheet of inputPath and writes the export to outputPath.
func ConvertFile(inputPath, outputPath string, opts ...Option) error {
	c, err := NewConverter(opts...)
	if err != nil {
		return err
	}
	return c.ConvertFile(inputPath, outputPath)
}

// ConvertBytes reads the first sheet of inputPath and returns the export.
func ConvertBytes(inputPath string, opts ...Option) ([]byte, error) {
	c, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	return c.ConvertBytes(inputPath)
}

// ConvertReader reads a workbook from r and writes the export to w.
func ConvertReader(r io.Reader, w io.Writer, opts ...Option) error {
	c, err := NewConverter(opts...)
	if err != nil {
		return err
	}
	return c.ConvertReader(r, w)
}

// Flatten resolves merges, propagates the header block, synthesizes composite
// headers and formats every data row.
func (c *Converter) Flatten(g *Grid, merges []MergeRegion) (*Table, error) {
	rg := Resolve(g, merges)
	layout, err := c.prop.Propagate(rg)
	if err != nil {
		return nil, fmt.Errorf("propagate headers: %w", err)
	}

	b := rg.Bounds()
	idCol := findIdentifierColumn(layout.Columns, c.opts.identifierLabels)
	t := &Table{
		Stages:    layout.Stages,
		Roles:     layout.Roles,
		Columns:   make([]Column, 0, len(layout.Columns)),
		delimiter: c.opts.delimiter,
	}
	for _, l := range layout.Columns {
		t.Columns = append(t.Columns, Column{
			Index:      l.Col,
			Stage:      l.Stage,
			Role:       l.Role,
			Field:      l.Field,
			Header:     c.synth.Composite(l),
			Identifier: l.Col == idCol,
		})
	}

	f := newCellFormatter(c.opts, rg.Date1904(), idCol)
	for row := b.RowMin + headerRows; row <= b.RowMax; row++ {
		out := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			out[i] = f.Format(rg.Cell(row, col.Index), NewCellRef(row, col.Index))
		}
		t.Rows = append(t.Rows, out)
	}

	c.opts.logger.Debug("flattened grid",
		"bounds", b.String(),
		"merges", len(merges),
		"stages", len(t.Stages),
		"columns", len(t.Columns),
		"rows", len(t.Rows),
		"identifier", identifierName(idCol),
	)
	return t, nil
}

func identifierName(col int) string {
	if col < 0 {
		return "none"
	}
	return ColToName(col)
}

// Convert flattens g and returns the delimited export.
func (c *Converter) Convert(g *Grid, merges []MergeRegion) (string, error) {
	t, err := c.Flatten(g, merges)
	if err != nil {
		return "", err
	}
	return Serialize(t.Records(), c.opts.delimiter), nil
}

// ConvertWriter flattens g and writes the export to w.
func (c *Converter) ConvertWriter(g *Grid, merges []MergeRegion, w io.Writer) error {
	t, err := c.Flatten(g, merges)
	if err != nil {
		return err
	}
	return WriteDelimited(w, t.Records(), c.opts.delimiter)
}

// ConvertFile reads the first sheet of inputPath and writes the export to outputPath.
// A partially written output file is removed on failure.
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	g, merges, err := c.LoadFile(inputPath)
	if err != nil {
		return err
	}
	out, err := createOutput(outputPath)
	if err != nil {
		return fmt.Errorf("create output file %q: %w", outputPath, err)
	}
	if err := c.ConvertWriter(g, merges, out); err != nil {
		out.Close()
		os.Remove(outputPath)
		return err
	}
	// The file is kept only when it closes cleanly.
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("close output file %q: %w", outputPath, err)
	}
	return nil
}

// createOutput opens the export destination. Tests replace it.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// ConvertBytes reads the first sheet of inputPath and returns the export.
func (c *Converter) ConvertBytes(inputPath string) ([]byte, error) {
	g, merges, err := c.LoadFile(inputPath)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.ConvertWriter(g, merges, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertReader reads a workbook from r and writes the export to w.
func (c *Converter) ConvertReader(r io.Reader, w io.Writer) error {
	g, merges, err := c.LoadReader(r)
	if err != nil {
		return err
	}
	return c.ConvertWriter(g, merges, w)
}
