package xlflat

import "log/slog"

// Default label sets used when no profile overrides them.
var (
	DefaultStageKeywords    = []string{"Инициирование", "Согласование", "Утверждение", "Исполнение"}
	DefaultIdentifierLabels = []string{"Номер заявки"}
	DefaultGenericFields    = []string{"Значение", "Наименование", "Описание"}
)

// Options holds configuration for the Converter.
type Options struct {
	stagePolicy      StagePolicy
	stageKeywords    []string
	stageRule        string
	identifierLabels []string
	genericFields    []string
	headerSeparator  string
	locale           NumberLocale
	delimiter        rune
	displayText      bool
	logger           *slog.Logger
}

func defaultOptions() *Options {
	return &Options{
		stagePolicy:      StageAnyNonEmpty,
		stageKeywords:    DefaultStageKeywords,
		identifierLabels: DefaultIdentifierLabels,
		genericFields:    DefaultGenericFields,
		headerSeparator:  " / ",
		locale:           LocaleRU,
		delimiter:        ';',
		logger:           slog.New(slog.DiscardHandler),
	}
}

func buildOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures the Converter.
type Option func(*Options)

// WithStagePolicy selects how header row 0 detects stage starts (default: StageAnyNonEmpty).
func WithStagePolicy(p StagePolicy) Option {
	return func(o *Options) { o.stagePolicy = p }
}

// WithStageKeywords replaces the stage keyword list.
func WithStageKeywords(keywords ...string) Option {
	return func(o *Options) { o.stageKeywords = keywords }
}

// WithStageRule sets the predicate used by StageExpression and switches the
// policy to it. The expression sees value, col and keywords, plus isKeyword(value).
func WithStageRule(rule string) Option {
	return func(o *Options) {
		o.stageRule = rule
		o.stagePolicy = StageExpression
	}
}

// WithIdentifierLabels replaces the field labels that mark the identifier column.
func WithIdentifierLabels(labels ...string) Option {
	return func(o *Options) { o.identifierLabels = labels }
}

// WithGenericFields replaces the field names dropped from composite headers.
func WithGenericFields(names ...string) Option {
	return func(o *Options) { o.genericFields = names }
}

// WithHeaderSeparator sets the string joining composite header parts (default: " / ").
func WithHeaderSeparator(sep string) Option {
	return func(o *Options) { o.headerSeparator = sep }
}

// WithLocale sets the number grouping convention (default: LocaleRU).
func WithLocale(l NumberLocale) Option {
	return func(o *Options) { o.locale = l }
}

// WithDelimiter sets the field delimiter of the export (default: ';').
func WithDelimiter(d rune) Option {
	return func(o *Options) { o.delimiter = d }
}

// WithDisplayText makes the workbook loader keep each cell's formatted text.
func WithDisplayText(enabled bool) Option {
	return func(o *Options) { o.displayText = enabled }
}

// WithLogger sets the logger. Nil restores the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}
