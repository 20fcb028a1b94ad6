package xlflat

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// approvalGrid returns a grid with a complete three-row header block and two
// data rows. Layout:
//
//	   A              B        C             D             E        F
//	1                 Заявка   Согласование (C1:E1)                  Утверждение (F1:F2)
//	2                          Руководитель (C2:D2)        Юрист
//	3  Номер заявки   Сумма    ФИО           Дата          Дата     Дата
//	4  1234           125000   Иванов        45723         45723    999
//	5  98765          1234.5   Item; "A"\nB                n/a      1000
func approvalGrid(t *testing.T) (*Grid, []MergeRegion) {
	t.Helper()
	g := GridFromRows([][]any{
		{nil, "Заявка", "Согласование", nil, nil, "Утверждение"},
		{nil, nil, "Руководитель", nil, "Юрист", nil},
		{"Номер заявки", "Сумма", "ФИО", "Дата", "Дата", "Дата"},
		{1234, 125000, "Иванов", DateCell(45723), DateCell(45723), 999},
		{98765, NumberCell(1234.5, "#,##0.00"), "Item; \"A\"\nB", nil, Cell{Value: "n/a", Kind: KindDate}, 1000},
	})
	return g, mustMerges(t, "C1:E1", "C2:D2", "F1:F2")
}

// approvalExport is the expected export of approvalGrid with default options.
const approvalExport = ";Заявка;Согласование;Согласование;Согласование;Утверждение\n" +
	";;Руководитель;Руководитель;Юрист;Утверждение\n" +
	"Номер заявки;Сумма;ФИО;Дата;Дата;Дата\n" +
	"Номер заявки;Заявка / Сумма;Согласование / Руководитель / ФИО;Согласование / Руководитель / Дата;Согласование / Юрист / Дата;Утверждение / Дата\n" +
	"1234;125 000;Иванов;07.03.2025;07.03.2025;999\n" +
	"98765;1 234,50;\"Item; \"\"A\"\"\nB\";;n/a;1 000"

func mustMerges(t *testing.T, ranges ...string) []MergeRegion {
	t.Helper()
	out := make([]MergeRegion, 0, len(ranges))
	for _, r := range ranges {
		m, err := ParseMergeRegion(r)
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func newTestConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	c, err := NewConverter(opts...)
	require.NoError(t, err)
	return c
}

// createApprovalWorkbook writes approvalGrid's content as an .xlsx file with
// real merges, number formats and date styles, and returns its path.
func createApprovalWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	set := func(cell string, v any) {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	set("B1", "Заявка")
	set("C1", "Согласование")
	set("F1", "Утверждение")
	set("C2", "Руководитель")
	set("E2", "Юрист")
	set("A3", "Номер заявки")
	set("B3", "Сумма")
	set("C3", "ФИО")
	set("D3", "Дата")
	set("E3", "Дата")
	set("F3", "Дата")

	set("A4", 1234)
	set("B4", 125000)
	set("C4", "Иванов")
	set("D4", 45723)
	set("E4", 45723)
	set("F4", 999)

	set("A5", 98765)
	set("B5", 1234.5)
	set("C5", "Item; \"A\"\nB")
	set("E5", "n/a")
	set("F5", 1000)

	for _, r := range [][2]string{{"C1", "E1"}, {"C2", "D2"}, {"F1", "F2"}} {
		require.NoError(t, f.MergeCell(sheet, r[0], r[1]))
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "D4", "E4", dateStyle))

	decimalFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &decimalFmt})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "B5", "B5", moneyStyle))

	path := filepath.Join(t.TempDir(), "approval.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}
