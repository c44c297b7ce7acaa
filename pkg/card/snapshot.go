package card

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// Compile-time interface checks.
var (
	_ Card   = (*Snapshot)(nil)
	_ Note   = (*StaticNote)(nil)
	_ Source = (*Snapshots)(nil)
)

// StaticNote is a [Note] backed by plain values.
type StaticNote struct {
	Type      string
	FieldList []Field
	TagList   []string
}

// NewNote creates a [StaticNote]. Fields are given as alternating name and
// value strings.
func NewNote(noteType string, tags []string, fields ...string) *StaticNote {
	n := &StaticNote{Type: noteType, TagList: tags}
	for i := 0; i+1 < len(fields); i += 2 {
		n.FieldList = append(n.FieldList, Field{Name: fields[i], Value: fields[i+1]})
	}

	return n
}

func (n *StaticNote) Fields() []Field  { return n.FieldList }
func (n *StaticNote) Tags() []string   { return n.TagList }
func (n *StaticNote) NoteType() string { return n.Type }

// Snapshot is a [Card] backed by plain values.
type Snapshot struct {
	StaticNote *StaticNote
	DeckLabel  string
	// Eases holds one entry per review, in review order.
	Eases       []int
	CardID      int64
	HomeDeck    int64
	QueueCode   Queue
	Repetitions int
}

// Option configures a [Snapshot].
type Option func(*Snapshot)

// WithDeck sets the deck id and name.
func WithDeck(id int64, name string) Option {
	return func(s *Snapshot) {
		s.HomeDeck = id
		s.DeckLabel = name
	}
}

// WithQueue sets the scheduling queue.
func WithQueue(q Queue) Option {
	return func(s *Snapshot) {
		s.QueueCode = q
	}
}

// WithReviews records one review per ease value and sets the repetition
// count to match.
func WithReviews(eases ...int) Option {
	return func(s *Snapshot) {
		s.Eases = append(s.Eases, eases...)
		s.Repetitions = len(s.Eases)
	}
}

// WithReps overrides the repetition count without touching the review log.
func WithReps(n int) Option {
	return func(s *Snapshot) {
		s.Repetitions = n
	}
}

// NewSnapshot creates a [Snapshot] for the given note.
func NewSnapshot(id int64, note *StaticNote, opts ...Option) *Snapshot {
	s := &Snapshot{
		CardID:     id,
		StaticNote: note,
		DeckLabel:  "Default",
		HomeDeck:   1,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Snapshot) ID() int64     { return s.CardID }
func (s *Snapshot) DeckID() int64 { return s.HomeDeck }
func (s *Snapshot) Queue() Queue  { return s.QueueCode }
func (s *Snapshot) Reps() int     { return s.Repetitions }

func (s *Snapshot) CountReviews(o Outcome) (int, error) {
	n := 0
	for _, ease := range s.Eases {
		if o.Includes(ease) {
			n++
		}
	}

	return n, nil
}

func (s *Snapshot) Note() (Note, error) {
	if s.StaticNote == nil {
		return nil, fmt.Errorf("card %d: no note", s.CardID)
	}

	return s.StaticNote, nil
}

func (s *Snapshot) DeckName() (string, error) {
	return s.DeckLabel, nil
}

// Snapshots is an in-memory [Source].
type Snapshots map[int64]Card

// NewSnapshots indexes the given cards by id.
func NewSnapshots(cards ...Card) Snapshots {
	s := make(Snapshots, len(cards))
	for _, c := range cards {
		s[c.ID()] = c
	}

	return s
}

// CardIDs returns the ids in ascending order.
func (s Snapshots) CardIDs(_ context.Context) ([]int64, error) {
	return slices.Sorted(maps.Keys(s)), nil
}

func (s Snapshots) Card(_ context.Context, id int64) (Card, error) {
	c, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	return c, nil
}
