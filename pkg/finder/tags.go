package finder

import (
	"fmt"
	"strings"

	"github.com/macropower/cardfont/pkg/card"
)

// Tags matches the note's tags against whitespace-separated patterns. Each
// pattern matches if any tag matches it; pattern results are combined with
// Logic.
type Tags struct {
	Text    string `json:"text" jsonschema:"title=Tags (regex),description=Whitespace-separated patterns." validate:"regexps"`
	Logic   Logic  `json:"logic" validate:"omitempty,oneof=or and"`
	Enabled bool   `json:"enabled" jsonschema:"title=Enabled"`
}

func (*Tags) Name() string { return "Tags" }

func (p *Tags) IsEnabled() bool { return p != nil && p.Enabled }

// Patterns returns the individual tag patterns.
func (p *Tags) Patterns() []string {
	return strings.Fields(p.Text)
}

func (p *Tags) Match(c card.Card) (bool, error) {
	pats := p.Patterns()
	if len(pats) == 0 {
		return false, nil
	}

	n, err := c.Note()
	if err != nil {
		return false, fmt.Errorf("note: %w", err)
	}

	tags := n.Tags()
	results := make([]bool, 0, len(pats))

	for _, pat := range pats {
		matched := false

		for _, tag := range tags {
			ok, err := search(pat, tag)
			if err != nil {
				return false, err
			}
			if ok {
				matched = true
				break
			}
		}

		results = append(results, matched)
	}

	return p.Logic.Combine(results)
}
