package card

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a [Source] when a card id is unknown.
var ErrNotFound = errors.New("card not found")

// Outcome filters review history rows.
type Outcome int

const (
	// OutcomeAny counts every review.
	OutcomeAny Outcome = iota
	// OutcomePass counts reviews answered with an ease above "again".
	OutcomePass
	// OutcomeFail counts reviews answered with "again".
	OutcomeFail
)

// Includes reports whether a review answered with the given ease button
// belongs to the outcome. Ease 1 is "again"; 2 and above are passes.
func (o Outcome) Includes(ease int) bool {
	switch o {
	case OutcomePass:
		return ease > 1
	case OutcomeFail:
		return ease == 1
	default:
		return true
	}
}

// Field is a single named note field.
type Field struct {
	Name  string
	Value string
}

// Card is a read-only view of a scheduled card.
type Card interface {
	ID() int64
	// DeckID returns the card's home deck. Cards temporarily moved into a
	// filtered deck report their original deck.
	DeckID() int64
	Queue() Queue
	Reps() int
	CountReviews(o Outcome) (int, error)
	Note() (Note, error)
	// DeckName returns the display name of [Card.DeckID], with "::"
	// separating nested decks.
	DeckName() (string, error)
}

// Note is a read-only view of the note a card was generated from.
type Note interface {
	// Fields returns the note's fields in note type order.
	Fields() []Field
	Tags() []string
	NoteType() string
}

// Source enumerates and loads cards from a collection.
type Source interface {
	CardIDs(ctx context.Context) ([]int64, error)
	Card(ctx context.Context, id int64) (Card, error)
}

// SortFielder is implemented by notes whose note type designates a sort field
// other than the first.
type SortFielder interface {
	SortField() Field
}

// SortField returns the note's sort field. Notes that do not implement
// [SortFielder] sort by their first field; the zero [Field] is returned when
// the note has none.
func SortField(n Note) Field {
	if sf, ok := n.(SortFielder); ok {
		return sf.SortField()
	}

	fields := n.Fields()
	if len(fields) == 0 {
		return Field{}
	}

	return fields[0]
}
