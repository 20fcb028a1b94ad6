package xlflat

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	dateLayout        = "02.01.2006"
	groupingThreshold = 1000
)

// NumberLocale is the separator convention used for grouped numbers.
type NumberLocale struct {
	Name    string
	Group   string
	Decimal string
}

var (
	LocaleRU = NumberLocale{Name: "ru", Group: " ", Decimal: ","}
	LocaleEN = NumberLocale{Name: "en", Group: ",", Decimal: "."}
)

// ParseLocale returns the locale preset for a name.
func ParseLocale(name string) (NumberLocale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ru", "ru-ru":
		return LocaleRU, nil
	case "en", "en-us":
		return LocaleEN, nil
	}
	return NumberLocale{}, fmt.Errorf("unsupported locale %q (must be ru or en)", name)
}

// DecimalPlaces infers the number of decimals from a format code: 2 when
// the code contains a decimal pattern, 0 otherwise.
func DecimalPlaces(format string) int {
	if strings.Contains(format, ".") {
		return 2
	}
	return 0
}

// groupNumber formats v with thousands grouping. Grouping is computed in the
// English convention and the separators are then mapped onto the locale.
func (l NumberLocale) groupNumber(p *message.Printer, v float64, decimals int) string {
	scale := math.Pow10(decimals)
	v = math.Round(v*scale) / scale
	s := p.Sprint(number.Decimal(v, number.Scale(decimals)))
	return strings.NewReplacer(",", l.Group, ".", l.Decimal).Replace(s)
}

// plainNumber formats v without grouping. A format code fixes the number of
// decimals; without one the shortest form is used.
func (l NumberLocale) plainNumber(v float64, format string) string {
	prec := -1
	if format != "" && !strings.EqualFold(format, "General") {
		prec = DecimalPlaces(format)
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', prec, 64), ".", l.Decimal, 1)
}

// identifierSeparators are removed from identifier text before parsing.
var identifierSeparators = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "'", "")

// identifierDigits renders an identifier as a plain number with no thousands
// separators, reading s with either separator convention. Text that is not a
// number, or has no separators at all, is returned unchanged.
func identifierDigits(s string) string {
	if !strings.ContainsAny(s, " ,.'\u00a0\u202f") {
		return s
	}
	t := identifierSeparators.Replace(strings.TrimSpace(s))
	if t == "" {
		return s
	}
	lastComma, lastDot := strings.LastIndex(t, ","), strings.LastIndex(t, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the later one is the decimal point.
		group, dec := ",", "."
		if lastComma > lastDot {
			group, dec = ".", ","
		}
		t = strings.ReplaceAll(t, group, "")
		t = strings.Replace(t, dec, ".", 1)
	case lastComma >= 0:
		t = normalizeSingleSeparator(t, ",")
	case lastDot >= 0:
		t = normalizeSingleSeparator(t, ".")
	}
	if !isPlainDecimal(t) {
		return s
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// isPlainDecimal reports whether s is an optional minus, digits and at most
// one decimal point with digits on both sides.
func isPlainDecimal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" || (hasDot && frac == "") {
		return false
	}
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// normalizeSingleSeparator decides whether sep, the only separator kind in t,
// groups thousands or marks decimals. Repeated separators group, as does a
// single one between at most three digits and exactly three.
func normalizeSingleSeparator(t, sep string) string {
	parts := strings.Split(t, sep)
	if len(parts) > 2 {
		return strings.Join(parts, "")
	}
	head := strings.TrimPrefix(parts[0], "-")
	if len(head) >= 1 && len(head) <= 3 && len(parts[1]) == 3 {
		return parts[0] + parts[1]
	}
	return parts[0] + "." + parts[1]
}

// findIdentifierColumn returns the first column whose field label matches one
// of labels, exact matches winning over substring matches. -1 when none.
func findIdentifierColumn(cols []ColumnLabels, labels []string) int {
	norm := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			norm = append(norm, l)
		}
	}
	for _, exact := range []bool{true, false} {
		for _, c := range cols {
			field := strings.ToLower(c.Field)
			if field == "" {
				continue
			}
			for _, l := range norm {
				if field == l || (!exact && strings.Contains(field, l)) {
					return c.Col
				}
			}
		}
	}
	return -1
}

// cellFormatter renders resolved data cells as export text.
type cellFormatter struct {
	locale        NumberLocale
	printer       *message.Printer
	date1904      bool
	identifierCol int
	logger        *slog.Logger
}

func newCellFormatter(o *Options, date1904 bool, identifierCol int) *cellFormatter {
	return &cellFormatter{
		locale:        o.locale,
		printer:       message.NewPrinter(language.English),
		date1904:      date1904,
		identifierCol: identifierCol,
		logger:        o.logger,
	}
}

// Format renders one cell. It never fails: values that cannot be formatted
// as their declared kind degrade to their raw string form.
func (f *cellFormatter) Format(c Cell, ref CellRef) string {
	identifier := ref.Col == f.identifierCol
	var out string
	switch {
	case c.Display != "":
		out = c.Display
	case effectiveKind(c) == KindNumber:
		return f.number(c, ref, identifier)
	case effectiveKind(c) == KindDate:
		return f.date(c, ref)
	default:
		out = rawString(c.Value)
	}
	if identifier {
		if v, ok := numericValue(c.Value); ok && effectiveKind(c) == KindNumber {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return identifierDigits(out)
	}
	return out
}

// effectiveKind lets the Go type of an untyped value override a blank or text kind.
func effectiveKind(c Cell) CellKind {
	if c.Kind == KindNumber || c.Kind == KindDate {
		return c.Kind
	}
	if _, ok := c.Value.(time.Time); ok {
		return KindDate
	}
	if _, ok := toFloat(c.Value); ok {
		return KindNumber
	}
	return c.Kind
}

func (f *cellFormatter) number(c Cell, ref CellRef, identifier bool) string {
	v, ok := numericValue(c.Value)
	if !ok {
		f.fallback(ref, c, "non-numeric value in number cell")
		return rawString(c.Value)
	}
	if identifier {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if math.Abs(v) < groupingThreshold {
		return f.locale.plainNumber(v, c.Format)
	}
	return f.locale.groupNumber(f.printer, v, DecimalPlaces(c.Format))
}

func (f *cellFormatter) date(c Cell, ref CellRef) string {
	switch v := c.Value.(type) {
	case time.Time:
		return v.Format(dateLayout)
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.Format(dateLayout)
		}
	}
	serial, ok := numericValue(c.Value)
	if !ok {
		f.fallback(ref, c, "date cell without serial code")
		return rawString(c.Value)
	}
	t, err := excelize.ExcelDateToTime(serial, f.date1904)
	if err != nil {
		f.fallback(ref, c, err.Error())
		return strconv.FormatFloat(serial, 'f', -1, 64)
	}
	return t.Format(dateLayout)
}

func (f *cellFormatter) fallback(ref CellRef, c Cell, reason string) {
	f.logger.Debug("format fallback", "cell", ref.String(), "kind", c.Kind.String(), "reason", reason)
}

// numericValue accepts Go numbers and numeric strings. NaN and Inf are rejected.
func numericValue(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok {
		s, isStr := v.(string)
		if !isStr {
			return 0, false
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = p
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
