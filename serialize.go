package xlflat

import (
	"io"
	"strings"
)

const lineTerminator = "\n"

// needsQuote reports whether a field must be wrapped in quotes.
func needsQuote(field string, delimiter rune) bool {
	return strings.ContainsRune(field, delimiter) || strings.ContainsAny(field, "\"\r\n")
}

// quoteField wraps the field in quotes when needed, doubling inner quotes.
func quoteField(field string, delimiter rune) string {
	if !needsQuote(field, delimiter) {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func writeRow(b *strings.Builder, row []string, delimiter rune) {
	for i, field := range row {
		if i > 0 {
			b.WriteRune(delimiter)
		}
		b.WriteString(quoteField(field, delimiter))
	}
}

// Serialize joins rows into delimited text. Rows are separated by "\n";
// there is no trailing line terminator.
func Serialize(rows [][]string, delimiter rune) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString(lineTerminator)
		}
		writeRow(&b, row, delimiter)
	}
	return b.String()
}

// WriteDelimited writes the Serialize form of rows to w.
func WriteDelimited(w io.Writer, rows [][]string, delimiter rune) error {
	_, err := io.WriteString(w, Serialize(rows, delimiter))
	return err
}
