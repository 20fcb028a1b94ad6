package xlflat

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

// Profile is the YAML form of a converter configuration. Empty fields keep
// the converter defaults.
//
//	stage_policy: keyword-only
//	stage_keywords: [Согласование, Утверждение]
//	identifier_labels: [Номер заявки]
//	locale: ru
type Profile struct {
	StagePolicy      string   `yaml:"stage_policy"`
	StageKeywords    []string `yaml:"stage_keywords"`
	StageRule        string   `yaml:"stage_rule"`
	IdentifierLabels []string `yaml:"identifier_labels"`
	GenericFields    []string `yaml:"generic_fields"`
	HeaderSeparator  *string  `yaml:"header_separator"`
	Locale           string   `yaml:"locale"`
	Delimiter        string   `yaml:"delimiter"`
	DisplayText      bool     `yaml:"display_text"`
}

// LoadProfile reads a YAML profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %q: %w", path, err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes a YAML profile. Unknown keys are rejected.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.UnmarshalWithOptions(data, &p, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// Options converts the profile into converter options.
func (p *Profile) Options() ([]Option, error) {
	var opts []Option

	if p.StagePolicy != "" {
		policy, err := ParseStagePolicy(p.StagePolicy)
		if err != nil {
			return nil, err
		}
		if p.StageRule != "" && policy != StageExpression {
			return nil, fmt.Errorf("stage_rule requires stage_policy %s, got %s", StageExpression, policy)
		}
		opts = append(opts, WithStagePolicy(policy))
	}
	if p.StageRule != "" {
		if err := CheckStageRule(p.StageRule); err != nil {
			return nil, err
		}
		opts = append(opts, WithStageRule(p.StageRule))
	}
	if len(p.StageKeywords) > 0 {
		opts = append(opts, WithStageKeywords(p.StageKeywords...))
	}
	if len(p.IdentifierLabels) > 0 {
		opts = append(opts, WithIdentifierLabels(p.IdentifierLabels...))
	}
	if len(p.GenericFields) > 0 {
		opts = append(opts, WithGenericFields(p.GenericFields...))
	}
	if p.HeaderSeparator != nil {
		opts = append(opts, WithHeaderSeparator(*p.HeaderSeparator))
	}
	if p.Locale != "" {
		l, err := ParseLocale(p.Locale)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLocale(l))
	}
	if p.Delimiter != "" {
		d, err := ParseDelimiter(p.Delimiter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithDelimiter(d))
	}
	if p.DisplayText {
		opts = append(opts, WithDisplayText(true))
	}
	return opts, nil
}

// ParseDelimiter accepts a single character or the names "tab" and "semicolon".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	case "semicolon":
		return ';', nil
	case "comma":
		return ',', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("delimiter %q is not allowed", s)
	}
	return r, nil
}
