package xlflat

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// stageRule is a compiled expr-lang predicate deciding whether a header
// row 0 value starts a stage.
type stageRule struct {
	source   string
	program  *vm.Program
	keywords keywordSet
}

func stageRuleEnv(value string, col int, keywords keywordSet) map[string]any {
	return map[string]any{
		"value":     value,
		"col":       col,
		"keywords":  keywords.words(),
		"isKeyword": keywords.Match,
	}
}

// compileStageRule compiles rule once; the program is reused for every column.
func compileStageRule(rule string, keywords keywordSet) (*stageRule, error) {
	if rule == "" {
		return nil, fmt.Errorf("stage rule is empty")
	}
	program, err := expr.Compile(rule, expr.Env(stageRuleEnv("", 0, keywords)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile stage rule %q: %w", rule, err)
	}
	return &stageRule{source: rule, program: program, keywords: keywords}, nil
}

// Match evaluates the rule for a single column.
func (r *stageRule) Match(value string, col int) (bool, error) {
	out, err := expr.Run(r.program, stageRuleEnv(value, col, r.keywords))
	if err != nil {
		return false, fmt.Errorf("evaluate stage rule %q at column %s: %w", r.source, ColToName(col), err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("stage rule %q evaluated to %T, expected bool", r.source, out)
	}
	return b, nil
}
