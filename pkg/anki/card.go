package anki

import (
	"fmt"

	"github.com/macropower/cardfont/pkg/card"
)

// Card is a card loaded from a [Collection].
type Card struct {
	note  *Note
	decks map[int64]string
	eases []int
	id    int64
	did   int64
	odid  int64
	reps  int
	queue card.Queue
}

func (c *Card) ID() int64 { return c.id }

// DeckID returns the original deck when the card is in a filtered deck.
func (c *Card) DeckID() int64 {
	if c.odid != 0 {
		return c.odid
	}

	return c.did
}

func (c *Card) Queue() card.Queue { return c.queue }
func (c *Card) Reps() int         { return c.reps }

func (c *Card) CountReviews(o card.Outcome) (int, error) {
	n := 0
	for _, ease := range c.eases {
		if o.Includes(ease) {
			n++
		}
	}

	return n, nil
}

//nolint:ireturn // Implements card.Card.
func (c *Card) Note() (card.Note, error) {
	return c.note, nil
}

func (c *Card) DeckName() (string, error) {
	name, ok := c.decks[c.DeckID()]
	if !ok {
		return "", fmt.Errorf("unknown deck %d", c.DeckID())
	}

	return name, nil
}

// Note is a note loaded from a [Collection].
type Note struct {
	noteType string
	tags     []string
	fields   []card.Field
	sort     int
}

func (n *Note) Fields() []card.Field { return n.fields }
func (n *Note) Tags() []string       { return n.tags }
func (n *Note) NoteType() string     { return n.noteType }

// SortField returns the field the note type sorts by.
func (n *Note) SortField() card.Field {
	if n.sort >= 0 && n.sort < len(n.fields) {
		return n.fields[n.sort]
	}

	return card.Field{}
}
