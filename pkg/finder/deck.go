package finder

import (
	"fmt"

	"github.com/macropower/cardfont/pkg/card"
)

// Deck matches the name of the card's home deck. A card in a filtered deck
// is matched by its original deck.
type Deck struct {
	Text    string `json:"text" jsonschema:"title=Deck Name (regex)" validate:"regexp"`
	Enabled bool   `json:"enabled" jsonschema:"title=Enabled"`
}

func (*Deck) Name() string { return "Deck Name" }

func (p *Deck) IsEnabled() bool { return p != nil && p.Enabled }

func (p *Deck) Match(c card.Card) (bool, error) {
	if p.Text == "" {
		return false, nil
	}

	name, err := c.DeckName()
	if err != nil {
		return false, fmt.Errorf("deck name: %w", err)
	}

	return search(p.Text, name)
}

// NoteType matches the name of the card's note type.
type NoteType struct {
	Text    string `json:"text" jsonschema:"title=Note Type (regex)" validate:"regexp"`
	Enabled bool   `json:"enabled" jsonschema:"title=Enabled"`
}

func (*NoteType) Name() string { return "Note Type" }

func (p *NoteType) IsEnabled() bool { return p != nil && p.Enabled }

func (p *NoteType) Match(c card.Card) (bool, error) {
	if p.Text == "" {
		return false, nil
	}

	n, err := c.Note()
	if err != nil {
		return false, fmt.Errorf("note: %w", err)
	}

	return search(p.Text, n.NoteType())
}
