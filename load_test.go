package xlflat

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadFile_ApprovalWorkbook(t *testing.T) {
	path := createApprovalWorkbook(t)

	g, merges, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Bounds{RowMin: 0, RowMax: 4, ColMin: 0, ColMax: 5}, g.Bounds())
	assert.ElementsMatch(t, mustMerges(t, "C1:E1", "C2:D2", "F1:F2"), merges)

	c, ok := g.Cell(3, 3)
	require.True(t, ok)
	assert.Equal(t, KindDate, c.Kind)
	assert.Equal(t, 45723.0, c.Value)

	c, ok = g.Cell(4, 1)
	require.True(t, ok)
	assert.Equal(t, KindNumber, c.Kind)
	assert.Equal(t, 2, DecimalPlaces(c.Format))

	c, ok = g.Cell(2, 0)
	require.True(t, ok)
	assert.Equal(t, TextCell("Номер заявки"), c)

	_, ok = g.Cell(4, 3)
	assert.False(t, ok)
}

func TestConvertFile_ApprovalWorkbook(t *testing.T) {
	in := createApprovalWorkbook(t)
	out := filepath.Join(t.TempDir(), "approval.csv")

	require.NoError(t, ConvertFile(in, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, approvalExport, string(data))
}

func TestConvertBytes_MatchesInMemoryConversion(t *testing.T) {
	data, err := ConvertBytes(createApprovalWorkbook(t))
	require.NoError(t, err)

	g, merges := approvalGrid(t)
	want, err := newTestConverter(t).Convert(g, merges)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

func TestConvertReader(t *testing.T) {
	f, err := os.Open(createApprovalWorkbook(t))
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, ConvertReader(f, &buf))
	assert.Equal(t, approvalExport, buf.String())
}

func TestLoadFile_DisplayText(t *testing.T) {
	g, _, err := LoadFile(createApprovalWorkbook(t), WithDisplayText(true))
	require.NoError(t, err)

	c, ok := g.Cell(4, 1)
	require.True(t, ok)
	assert.NotEmpty(t, c.Display)

	c, ok = g.Cell(3, 1)
	require.True(t, ok)
	assert.Empty(t, c.Display, "unformatted number keeps no display text")
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)

	var srcErr *SourceReadError
	require.True(t, errors.As(err, &srcErr))
	assert.Contains(t, srcErr.Path, "missing.xlsx")
	assert.Contains(t, err.Error(), "missing.xlsx")
}

func TestConvertFile_NoOutputOnReadFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")

	err := ConvertFile(filepath.Join(dir, "missing.xlsx"), out)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

// closeFailingFile writes through to a real file but reports a close error.
type closeFailingFile struct {
	*os.File
}

var errCloseFailed = errors.New("disk full")

func (f closeFailingFile) Close() error {
	f.File.Close()
	return errCloseFailed
}

func TestConvertFile_CloseErrorRemovesOutput(t *testing.T) {
	orig := createOutput
	t.Cleanup(func() { createOutput = orig })
	createOutput = func(path string) (io.WriteCloser, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		return closeFailingFile{f}, nil
	}

	in := createApprovalWorkbook(t)
	out := filepath.Join(t.TempDir(), "approval.csv")

	err := ConvertFile(in, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, errCloseFailed)
	assert.Contains(t, err.Error(), "close output file")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadWorkbook_EmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, _, err := LoadWorkbook(f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySheet)

	var srcErr *SourceReadError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "Sheet1", srcErr.Sheet)
	assert.Contains(t, err.Error(), "<reader>")
}

func TestLoadWorkbook_BoolAndDateFormats(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", true))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", 45723))
	dateFmt := "dd.mm.yyyy"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B1", "B1", style))

	g, _, err := LoadWorkbook(f)
	require.NoError(t, err)

	c, _ := g.Cell(0, 0)
	assert.Equal(t, TextCell("TRUE"), c)
	c, _ = g.Cell(0, 1)
	assert.Equal(t, KindDate, c.Kind)
}

func TestIsDateFormatCode(t *testing.T) {
	assert.True(t, isDateFormatCode("dd.mm.yyyy"))
	assert.True(t, isDateFormatCode("[$-419]d mmmm yyyy"))
	assert.False(t, isDateFormatCode("#,##0.00"))
	assert.False(t, isDateFormatCode(`0.00" days"`))
	assert.False(t, isDateFormatCode("[Red]0"))
	assert.True(t, isBuiltinDateFormat(14))
	assert.False(t, isBuiltinDateFormat(4))
}
