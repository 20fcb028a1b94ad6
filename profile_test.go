package xlflat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfile = `
stage_policy: keyword-only
stage_keywords: [Согласование, Утверждение]
identifier_labels: [Код заявки]
generic_fields: [Значение]
header_separator: " | "
locale: en
delimiter: tab
`

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile([]byte(testProfile))
	require.NoError(t, err)

	assert.Equal(t, "keyword-only", p.StagePolicy)
	assert.Equal(t, []string{"Согласование", "Утверждение"}, p.StageKeywords)
	assert.Equal(t, []string{"Код заявки"}, p.IdentifierLabels)
	require.NotNil(t, p.HeaderSeparator)
	assert.Equal(t, " | ", *p.HeaderSeparator)
	assert.False(t, p.DisplayText)
}

func TestParseProfile_UnknownKey(t *testing.T) {
	_, err := ParseProfile([]byte("stage_polcy: keyword-only\n"))
	assert.Error(t, err)
}

func TestProfile_Options(t *testing.T) {
	p, err := ParseProfile([]byte(testProfile))
	require.NoError(t, err)
	opts, err := p.Options()
	require.NoError(t, err)

	o := buildOptions(opts)
	assert.Equal(t, StageKeywordOnly, o.stagePolicy)
	assert.Equal(t, []string{"Код заявки"}, o.identifierLabels)
	assert.Equal(t, " | ", o.headerSeparator)
	assert.Equal(t, LocaleEN, o.locale)
	assert.Equal(t, '\t', o.delimiter)

	g, merges := approvalGrid(t)
	out, err := newTestConverter(t, opts...).Convert(g, merges)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Номер заявки\tЗаявка | Сумма\tСогласование | Руководитель | ФИО\tСогласование | Руководитель | Дата\tСогласование | Юрист | Дата\tУтверждение | Дата", lines[3])
	assert.Equal(t, "1,234\t125,000\tИванов\t07.03.2025\t07.03.2025\t999", lines[4])
}

func TestProfile_OptionsRejectBadValues(t *testing.T) {
	for _, doc := range []string{
		"stage_policy: sometimes\n",
		"locale: de\n",
		"delimiter: ab\n",
		"stage_rule: 'value =='\n",
		"stage_policy: keyword-only\nstage_rule: 'value != \"\"'\n",
		"stage_policy: any-non-empty\nstage_rule: 'value != \"\"'\n",
	} {
		p, err := ParseProfile([]byte(doc))
		require.NoError(t, err, doc)
		_, err = p.Options()
		assert.Error(t, err, doc)
	}
}

func TestProfile_StageRuleWithExpressionPolicy(t *testing.T) {
	p, err := ParseProfile([]byte("stage_policy: expression\nstage_rule: 'value != \"\"'\n"))
	require.NoError(t, err)
	opts, err := p.Options()
	require.NoError(t, err)
	assert.Equal(t, StageExpression, buildOptions(opts).stagePolicy)

	p, err = ParseProfile([]byte("stage_policy: keyword-only\nstage_rule: 'value != \"\"'\n"))
	require.NoError(t, err)
	_, err = p.Options()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage_rule requires stage_policy expression")
}

func TestProfile_EmptyKeepsDefaults(t *testing.T) {
	p, err := ParseProfile([]byte("{}"))
	require.NoError(t, err)
	opts, err := p.Options()
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stage_rule: 'value startsWith \"Согл\"'\n"), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	opts, err := p.Options()
	require.NoError(t, err)
	assert.Equal(t, StageExpression, buildOptions(opts).stagePolicy)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{";": ';', "tab": '\t', `\t`: '\t', "comma": ',', "|": '|'} {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", ";;", `"`, "\n"} {
		_, err := ParseDelimiter(in)
		assert.Error(t, err, in)
	}
}
