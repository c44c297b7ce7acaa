package card

import (
	"encoding"
	"fmt"
	"strconv"

	"github.com/invopop/jsonschema"
)

// Queue is the host's scheduling queue code for a card.
type Queue int

const (
	QueueNew        Queue = 0
	QueueLearning   Queue = 1
	QueueReview     Queue = 2
	QueueRelearning Queue = 3
)

var (
	queueNames = map[Queue]string{
		QueueNew:        "New",
		QueueLearning:   "Learning",
		QueueReview:     "Reviewing",
		QueueRelearning: "Relearning",
	}
	queueByName = map[string]Queue{
		"New":        QueueNew,
		"Learning":   QueueLearning,
		"Reviewing":  QueueReview,
		"Relearning": QueueRelearning,
	}

	// SelectableQueues lists the queues a Card State predicate can select, in
	// display order.
	SelectableQueues = []Queue{QueueNew, QueueLearning, QueueReview, QueueRelearning}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Queue(0)
	_ encoding.TextMarshaler   = Queue(0)
	_ encoding.TextUnmarshaler = (*Queue)(nil)
)

// Selectable reports whether q is one of [SelectableQueues].
func (q Queue) Selectable() bool {
	_, ok := queueNames[q]

	return ok
}

// String returns the display name of the queue. Host-specific codes outside
// the selectable set render as "Queue(n)".
func (q Queue) String() string {
	if name, ok := queueNames[q]; ok {
		return name
	}

	return fmt.Sprintf("Queue(%d)", int(q))
}

// MarshalText implements [encoding.TextMarshaler].
func (q Queue) MarshalText() ([]byte, error) {
	if !q.Selectable() {
		return nil, fmt.Errorf("invalid card state: %d", int(q))
	}

	return []byte(queueNames[q]), nil
}

// UnmarshalText accepts either the display name or the numeric code.
func (q *Queue) UnmarshalText(text []byte) error {
	if v, ok := queueByName[string(text)]; ok {
		*q = v
		return nil
	}

	n, err := strconv.Atoi(string(text))
	if err != nil || !Queue(n).Selectable() {
		return fmt.Errorf("invalid card state: %q", string(text))
	}

	*q = Queue(n)

	return nil
}

// JSONSchema describes both accepted encodings.
func (Queue) JSONSchema() *jsonschema.Schema {
	names := make([]any, 0, len(SelectableQueues))
	for _, q := range SelectableQueues {
		names = append(names, q.String())
	}

	return &jsonschema.Schema{
		Title: "Card State",
		AnyOf: []*jsonschema.Schema{
			{Type: "string", Enum: names},
			{Type: "integer", Minimum: "0", Maximum: "3"},
		},
	}
}
