package hook

import (
	"slices"
	"sync"

	"github.com/macropower/cardfont/pkg/card"
)

// Filter rewrites the markup of a card about to be shown.
type Filter func(text string, c card.Card, kind Kind) string

// Capabilities describes optional host behavior.
type Capabilities struct {
	// PreviewAnswer is set when the host emits [KindPreviewAnswer] events.
	PreviewAnswer bool `json:"previewAnswer"`
}

// Host is the application that renders cards.
type Host interface {
	// AddCardWillShow registers f and returns a function removing it.
	AddCardWillShow(f Filter) (remove func())
	Capabilities() Capabilities
}

// Local is an in-process [Host] that applies its filters in registration
// order.
type Local struct {
	filters map[int]Filter
	order   []int
	caps    Capabilities
	next    int
	mu      sync.Mutex
}

// NewLocal creates a [Local] host with the given capabilities.
func NewLocal(caps Capabilities) *Local {
	return &Local{filters: map[int]Filter{}, caps: caps}
}

func (l *Local) AddCardWillShow(f Filter) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.next
	l.next++
	l.filters[id] = f
	l.order = append(l.order, id)

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		delete(l.filters, id)
		l.order = slices.DeleteFunc(l.order, func(i int) bool { return i == id })
	}
}

func (l *Local) Capabilities() Capabilities {
	return l.caps
}

// Len returns the number of registered filters.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.order)
}

// Show passes text through every registered filter.
func (l *Local) Show(text string, c card.Card, kind Kind) string {
	l.mu.Lock()
	filters := make([]Filter, 0, len(l.order))
	for _, id := range l.order {
		filters = append(filters, l.filters[id])
	}
	l.mu.Unlock()

	for _, f := range filters {
		text = f(text, c, kind)
	}

	return text
}
