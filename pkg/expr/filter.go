package expr

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/macropower/cardfont/pkg/finder"
)

// ErrNotBool is returned when an expression does not evaluate to a boolean.
var ErrNotBool = errors.New("expression must return a boolean")

var defaultEnv = MustNewEnvironment(
	cel.Variable("card", cel.MapType(cel.StringType, cel.DynType)),
)

// Filter selects previewed cards with a compiled CEL expression.
type Filter struct {
	program    cel.Program
	expression string
}

// NewFilter compiles expression. The expression must be boolean, or dynamic
// and boolean at evaluation.
func NewFilter(expression string) (*Filter, error) {
	program, out, err := defaultEnv.Compile(expression)
	if err != nil {
		return nil, err
	}

	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w, got %s", ErrNotBool, out)
	}

	return &Filter{program: program, expression: expression}, nil
}

func (f *Filter) String() string {
	return f.expression
}

// Match evaluates the expression against m.
func (f *Filter) Match(m finder.Match) (bool, error) {
	result, _, err := f.program.Eval(map[string]any{
		"card": ConvertToCELValue(Variables(m)),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", f.expression, err)
	}

	b, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w, got %T", ErrNotBool, result.Value())
	}

	return b, nil
}

// Apply returns the matches that satisfy the expression. A nil [Filter]
// keeps every match.
func (f *Filter) Apply(matches []finder.Match) ([]finder.Match, error) {
	if f == nil {
		return matches, nil
	}

	out := make([]finder.Match, 0, len(matches))

	for _, m := range matches {
		ok, err := f.Match(m)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", m.ID, err)
		}
		if ok {
			out = append(out, m)
		}
	}

	return out, nil
}

// Variables returns the `card` variable for m.
func Variables(m finder.Match) map[string]any {
	return map[string]any{
		"id":        m.ID,
		"deck":      m.Deck,
		"noteType":  m.NoteType,
		"sortField": m.SortField,
		"sortValue": m.SortValue,
		"tags":      m.Tags,
		"reps":      m.Repetition,
	}
}
