package finder

import (
	"fmt"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/compare"
)

// RuleSet is a named group of predicates with a combining [Logic].
type RuleSet struct {
	Deck        *Deck        `json:"deck,omitempty" jsonschema:"title=Deck Name"`
	NoteType    *NoteType    `json:"noteType,omitempty" jsonschema:"title=Note Type"`
	Tags        *Tags        `json:"tags,omitempty" jsonschema:"title=Tags"`
	CardState   *CardState   `json:"cardState,omitempty" jsonschema:"title=Card States"`
	SuccessRate *SuccessRate `json:"successRate,omitempty" jsonschema:"title=Success Rate"`
	PassCount   *PassCount   `json:"passCount,omitempty" jsonschema:"title=# of Passes"`
	Field       *Field       `json:"field,omitempty" jsonschema:"title=Field"`
	// Name is the key the rule set is stored under.
	Name  string `json:"-"`
	Logic Logic  `json:"logic" validate:"omitempty,oneof=or and"`
	// Negate inverts the combined result.
	Negate bool `json:"negate" jsonschema:"title=Negate"`
	// ApplyToPreviewer also applies the rule set to cards shown in the
	// browser's previewer.
	ApplyToPreviewer bool `json:"applyToPreviewer" jsonschema:"title=Apply to Previewer"`
}

// New creates a [RuleSet] with every predicate present and disabled, that
// also applies to the previewer.
func New(name string) *RuleSet {
	rs := &RuleSet{Name: name, ApplyToPreviewer: true}
	rs.EnsureDefaults()

	return rs
}

// EnsureDefaults fills in missing predicates and selectors.
func (rs *RuleSet) EnsureDefaults() {
	if rs.Logic == "" {
		rs.Logic = LogicOr
	}
	if rs.Deck == nil {
		rs.Deck = &Deck{}
	}
	if rs.NoteType == nil {
		rs.NoteType = &NoteType{}
	}
	if rs.Tags == nil {
		rs.Tags = &Tags{}
	}
	if rs.Tags.Logic == "" {
		rs.Tags.Logic = LogicOr
	}
	if rs.CardState == nil {
		rs.CardState = &CardState{}
	}
	if rs.CardState.Options == nil {
		rs.CardState.Options = []card.Queue{}
	}
	if rs.SuccessRate == nil {
		rs.SuccessRate = &SuccessRate{Comparator: compare.Equal}
	}
	if rs.PassCount == nil {
		rs.PassCount = &PassCount{Comparator: compare.Equal}
	}
	if rs.Field == nil {
		rs.Field = &Field{
			LengthComparator: compare.Equal,
			ScriptComparator: compare.Equal,
		}
	}
}

// Predicates returns the rule set's predicates in display order, skipping
// absent ones.
func (rs *RuleSet) Predicates() []Predicate {
	var out []Predicate

	add := func(p Predicate, present bool) {
		if present {
			out = append(out, p)
		}
	}

	add(rs.Deck, rs.Deck != nil)
	add(rs.NoteType, rs.NoteType != nil)
	add(rs.Tags, rs.Tags != nil)
	add(rs.CardState, rs.CardState != nil)
	add(rs.SuccessRate, rs.SuccessRate != nil)
	add(rs.PassCount, rs.PassCount != nil)
	add(rs.Field, rs.Field != nil)

	return out
}

// Enabled returns the enabled predicates in display order.
func (rs *RuleSet) Enabled() []Predicate {
	var out []Predicate
	for _, p := range rs.Predicates() {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}

	return out
}

// Evaluate reports whether the card matches the rule set.
func (rs *RuleSet) Evaluate(c card.Card) (bool, error) {
	ex, err := rs.Explain(c)
	if err != nil {
		return false, err
	}

	return ex.Matched, nil
}

// Result is the outcome of one predicate.
type Result struct {
	Predicate string `json:"predicate"`
	Matched   bool   `json:"matched"`
}

// Explanation records how a rule set reached its decision for a card.
type Explanation struct {
	Logic   Logic    `json:"logic"`
	Results []Result `json:"results"`
	// Combined is the result before negation.
	Combined bool `json:"combined"`
	Negated  bool `json:"negated"`
	Matched  bool `json:"matched"`
}

// Explain evaluates the card and returns the result of each enabled
// predicate along with the final decision. With no enabled predicates the
// combined result is false.
func (rs *RuleSet) Explain(c card.Card) (Explanation, error) {
	ex := Explanation{
		Logic:   rs.Logic,
		Negated: rs.Negate,
	}

	enabled := rs.Enabled()
	results := make([]bool, 0, len(enabled))

	for _, p := range enabled {
		ok, err := p.Match(c)
		if err != nil {
			return ex, fmt.Errorf("%s: %w", p.Name(), err)
		}

		results = append(results, ok)
		ex.Results = append(ex.Results, Result{Predicate: p.Name(), Matched: ok})
	}

	if len(results) > 0 {
		combined, err := rs.Logic.Combine(results)
		if err != nil {
			return ex, err
		}

		ex.Combined = combined
	}

	ex.Matched = ex.Combined != rs.Negate

	return ex, nil
}
