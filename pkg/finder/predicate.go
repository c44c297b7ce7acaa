package finder

import (
	"github.com/macropower/cardfont/pkg/card"
)

// Predicate is a single, independently enableable card test.
type Predicate interface {
	// Name is the display name of the predicate.
	Name() string
	IsEnabled() bool
	Match(c card.Card) (bool, error)
}

// Compile-time interface checks.
var (
	_ Predicate = (*Deck)(nil)
	_ Predicate = (*NoteType)(nil)
	_ Predicate = (*Tags)(nil)
	_ Predicate = (*CardState)(nil)
	_ Predicate = (*SuccessRate)(nil)
	_ Predicate = (*PassCount)(nil)
	_ Predicate = (*Field)(nil)
)
