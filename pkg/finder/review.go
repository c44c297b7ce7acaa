package finder

import (
	"fmt"
	"slices"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/compare"
)

// CardState matches cards whose scheduling queue is one of Options.
type CardState struct {
	Options []card.Queue `json:"options" jsonschema:"title=Card States" validate:"dive,cardstate"`
	Enabled bool         `json:"enabled" jsonschema:"title=Enabled"`
}

func (*CardState) Name() string { return "Card States" }

func (p *CardState) IsEnabled() bool { return p != nil && p.Enabled }

func (p *CardState) Match(c card.Card) (bool, error) {
	return slices.Contains(p.Options, c.Queue()), nil
}

// SuccessRate compares the share of passed reviews, in percent, against
// Value. A card that was never reviewed has a success rate of 100%.
type SuccessRate struct {
	Comparator compare.Op `json:"comparator" validate:"comparator"`
	Value      int        `json:"value" jsonschema:"title=Success Rate (%),minimum=0,maximum=100" validate:"min=0,max=100"`
	Enabled    bool       `json:"enabled" jsonschema:"title=Enabled"`
}

func (*SuccessRate) Name() string { return "Success Rate" }

func (p *SuccessRate) IsEnabled() bool { return p != nil && p.Enabled }

func (p *SuccessRate) Match(c card.Card) (bool, error) {
	rate, err := Rate(c)
	if err != nil {
		return false, err
	}

	return p.Comparator.Apply(rate, float64(p.Value)/100)
}

// Rate returns the card's passed reviews divided by its repetitions, or 1
// when the card has no repetitions.
func Rate(c card.Card) (float64, error) {
	reps := c.Reps()
	if reps == 0 {
		return 1, nil
	}

	passes, err := c.CountReviews(card.OutcomePass)
	if err != nil {
		return 0, fmt.Errorf("count passes: %w", err)
	}

	return float64(passes) / float64(reps), nil
}

// PassCount compares the number of passed reviews against Value.
type PassCount struct {
	Comparator compare.Op `json:"comparator" validate:"comparator"`
	Value      int        `json:"value" jsonschema:"title=# of Passes,minimum=0" validate:"min=0"`
	Enabled    bool       `json:"enabled" jsonschema:"title=Enabled"`
}

func (*PassCount) Name() string { return "# of Passes" }

func (p *PassCount) IsEnabled() bool { return p != nil && p.Enabled }

func (p *PassCount) Match(c card.Card) (bool, error) {
	passes, err := c.CountReviews(card.OutcomePass)
	if err != nil {
		return false, fmt.Errorf("count passes: %w", err)
	}

	return p.Comparator.Ints(passes, p.Value)
}
