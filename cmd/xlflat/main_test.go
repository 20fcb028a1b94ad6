package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook creates a small approval sheet and returns its path.
func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	for cell, v := range map[string]any{
		"B1": "Согласование",
		"B2": "Юрист",
		"A3": "Номер заявки",
		"B3": "Сумма",
		"A4": 1234,
		"B4": 125000,
	} {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

const workbookExport = ";Согласование\n" +
	";Юрист\n" +
	"Номер заявки;Сумма\n" +
	"Номер заявки;Согласование / Юрист / Сумма\n" +
	"1234;125 000"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConvertCommand_Stdout(t *testing.T) {
	out, _, err := run(t, "convert", writeWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, workbookExport+"\n", out)
}

func TestConvertCommand_OutputFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.csv")
	_, stderr, err := run(t, "convert", writeWorkbook(t), "-o", dst)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote "+dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, workbookExport, string(data))
}

func TestConvertCommand_Flags(t *testing.T) {
	out, _, err := run(t, "convert", writeWorkbook(t), "--locale", "en", "-d", "tab")
	require.NoError(t, err)
	assert.Contains(t, out, "1234\t125,000")
}

func TestConvertCommand_VerboseLogs(t *testing.T) {
	_, stderr, err := run(t, "convert", writeWorkbook(t), "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, "flattened grid")
	assert.NotContains(t, stderr, "time=")
}

func TestConvertCommand_Profile(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("header_separator: \" > \"\n"), 0o644))

	out, _, err := run(t, "convert", writeWorkbook(t), "--profile", profile)
	require.NoError(t, err)
	assert.Contains(t, out, "Согласование > Юрист > Сумма")
}

func TestConvertCommand_BadFlags(t *testing.T) {
	in := writeWorkbook(t)
	for _, args := range [][]string{
		{"convert", in, "--policy", "sometimes"},
		{"convert", in, "--locale", "de"},
		{"convert", in, "-d", ";;"},
		{"convert", in, "--stage-rule", "value =="},
		{"convert", in, "--policy", "keyword-only", "--stage-rule", `value != ""`},
		{"convert", filepath.Join(t.TempDir(), "missing.xlsx")},
	} {
		_, _, err := run(t, args...)
		assert.Error(t, err, strings.Join(args, " "))
	}
}

func TestDescribeCommand(t *testing.T) {
	out, _, err := run(t, "describe", writeWorkbook(t))
	require.NoError(t, err)
	assert.Contains(t, out, "stage Согласование [B:B]")
	assert.Contains(t, out, "    A: Номер заявки (identifier)")
}

func TestValidateCommand(t *testing.T) {
	out, stderr, err := run(t, "validate", writeWorkbook(t))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "ok (0 warnings)")
}

func TestCheckCommand(t *testing.T) {
	in := writeWorkbook(t)
	dir := t.TempDir()

	same := filepath.Join(dir, "same.csv")
	require.NoError(t, os.WriteFile(same, []byte(strings.ReplaceAll(workbookExport, "\n", "\r\n")+"\r\n"), 0o644))
	_, stderr, err := run(t, "check", in, same)
	require.NoError(t, err)
	assert.Contains(t, stderr, "is up to date")

	stale := filepath.Join(dir, "stale.csv")
	require.NoError(t, os.WriteFile(stale, []byte(strings.Replace(workbookExport, "125 000", "120 000", 1)), 0o644))
	out, _, err := run(t, "check", in, stale)
	require.ErrorIs(t, err, errOutputDiffers)
	assert.Contains(t, out, "-1234;120 000")
	assert.Contains(t, out, "+1234;125 000")
}

func TestWriteLineDiff(t *testing.T) {
	var buf bytes.Buffer
	n := writeLineDiff(&buf, "a\nb\nc", "a\nB\nc")
	assert.Equal(t, 2, n)
	assert.Equal(t, "-b\n+B\n", buf.String())
}
