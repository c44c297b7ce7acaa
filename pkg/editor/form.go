package editor

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/compare"
	"github.com/macropower/cardfont/pkg/finder"
)

// Form builds the settings form bound to s. Numeric inputs are written back
// to s.Panel when they validate.
func (e *Editor) Form(s *Settings) *huh.Form {
	rs := s.Panel

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewNote().
				Title(rs.Name).
				Description("Cards matching this panel are shown in a random font."),
			logicSelect("Combine predicates with", &rs.Logic),
			huh.NewConfirm().Title("Negate").Value(&rs.Negate),
			huh.NewConfirm().Title("Apply to Previewer").Value(&rs.ApplyToPreviewer),
		).Title("Panel"),

		huh.NewGroup(
			huh.NewConfirm().Title("Enabled").Value(&rs.Deck.Enabled),
			patternInput("Deck Name (regex)", &rs.Deck.Text),
		).Title(rs.Deck.Name()),

		huh.NewGroup(
			huh.NewConfirm().Title("Enabled").Value(&rs.NoteType.Enabled),
			patternInput("Note Type (regex)", &rs.NoteType.Text),
		).Title(rs.NoteType.Name()),

		huh.NewGroup(
			huh.NewConfirm().Title("Enabled").Value(&rs.Tags.Enabled),
			patternInput("Tags (regex)", &rs.Tags.Text),
			logicSelect("Match", &rs.Tags.Logic),
		).Title(rs.Tags.Name()),

		huh.NewGroup(
			huh.NewConfirm().Title("Enabled").Value(&rs.CardState.Enabled),
			huh.NewMultiSelect[card.Queue]().
				Title("Card States").
				Options(queueOptions()...).
				Value(&rs.CardState.Options),
		).Title(rs.CardState.Name()),

		huh.NewGroup(
			huh.NewConfirm().Title("Enabled").Value(&rs.SuccessRate.Enabled),
			comparatorSelect("Comparator", &rs.SuccessRate.Comparator),
			intInput("Success Rate (%)", &rs.SuccessRate.Value, 0, 100),
		).Title(rs.SuccessRate.Name()),

		huh.NewGroup(
			huh.NewConfirm().Title("Enabled").Value(&rs.PassCount.Enabled),
			comparatorSelect("Comparator", &rs.PassCount.Comparator),
			intInput("Passes", &rs.PassCount.Value, 0, -1),
		).Title(rs.PassCount.Name()),

		huh.NewGroup(
			huh.NewConfirm().Title("Enabled").Value(&rs.Field.Enabled),
			patternInput("Field Name (regex)", &rs.Field.NameText),
			huh.NewConfirm().Title("Check Contents").Value(&rs.Field.ContentsEnabled),
			patternInput("Field Contents (regex)", &rs.Field.ContentsText),
			huh.NewConfirm().Title("Check Length").Value(&rs.Field.LengthEnabled),
			comparatorSelect("Length Comparator", &rs.Field.LengthComparator),
			intInput("Field Length", &rs.Field.LengthValue, 0, -1),
			huh.NewConfirm().Title("Check Script Count").Value(&rs.Field.ScriptEnabled),
			huh.NewInput().
				Title("Script").
				Placeholder(finder.ScriptKanji).
				Value(&rs.Field.Script).
				Validate(validateScript),
			comparatorSelect("Script Comparator", &rs.Field.ScriptComparator),
			intInput("Number of Script Characters", &rs.Field.ScriptValue, 0, -1),
		).Title(rs.Field.Name()),
	}

	for i := range s.Languages {
		lf := &s.Languages[i]

		groups = append(groups, huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(lf.WritingSystem).
				Description("Fonts to choose from at random.").
				Options(huh.NewOptions(lf.Families...)...).
				Filterable(true).
				Value(&lf.Enabled),
		).Title("Fonts"))
	}

	return huh.NewForm(groups...)
}

func logicSelect(title string, v *finder.Logic) *huh.Select[finder.Logic] {
	return huh.NewSelect[finder.Logic]().
		Title(title).
		Options(
			huh.NewOption("Any (or)", finder.LogicOr),
			huh.NewOption("All (and)", finder.LogicAnd),
		).
		Value(v)
}

func comparatorSelect(title string, v *compare.Op) *huh.Select[compare.Op] {
	opts := make([]huh.Option[compare.Op], 0, len(compare.All))
	for _, op := range compare.All {
		opts = append(opts, huh.NewOption(op.String(), op))
	}

	if *v == "" {
		*v = compare.Equal
	}

	return huh.NewSelect[compare.Op]().
		Title(title).
		Options(opts...).
		Value(v)
}

func queueOptions() []huh.Option[card.Queue] {
	opts := make([]huh.Option[card.Queue], 0, len(card.SelectableQueues))
	for _, q := range card.SelectableQueues {
		opts = append(opts, huh.NewOption(q.String(), q))
	}

	return opts
}

func patternInput(title string, v *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Value(v).
		Validate(finder.ValidatePattern)
}

// intInput binds a text input to v. A negative max leaves the value
// unbounded above.
func intInput(title string, v *int, minimum, maximum int) *huh.Input {
	text := strconv.Itoa(*v)

	return huh.NewInput().
		Title(title).
		CharLimit(6).
		Value(&text).
		Validate(func(s string) error {
			n, err := ParseInt(s, minimum, maximum)
			if err != nil {
				return err
			}

			*v = n

			return nil
		})
}

// ParseInt parses a numeric form value within [minimum, maximum]. A negative
// maximum leaves the value unbounded above.
func ParseInt(s string, minimum, maximum int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}

	if n < minimum || (maximum >= 0 && n > maximum) {
		if maximum < 0 {
			return 0, fmt.Errorf("must be at least %d", minimum)
		}

		return 0, fmt.Errorf("must be between %d and %d", minimum, maximum)
	}

	return n, nil
}

func validateScript(s string) error {
	if s == "" {
		return nil
	}

	_, err := finder.CountScript("", s)

	return err
}
