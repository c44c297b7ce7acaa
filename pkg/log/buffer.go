package log

import (
	"fmt"
	"io"
	"sync"
)

// DefaultBufferCapacity is used when a [CircularBuffer] is created with a
// capacity below one.
const DefaultBufferCapacity = 100

// CircularBuffer is an [io.Writer] that keeps the most recent writes. Each
// call to Write is one entry; once the buffer is full, the oldest entry is
// dropped. It is safe for concurrent use.
type CircularBuffer struct {
	entries [][]byte
	next    int
	dropped int
	mu      sync.Mutex
}

// NewCircularBuffer creates a [CircularBuffer] holding up to capacity
// entries.
func NewCircularBuffer(capacity int) *CircularBuffer {
	if capacity < 1 {
		capacity = DefaultBufferCapacity
	}

	return &CircularBuffer{entries: make([][]byte, 0, capacity)}
}

// Write stores a copy of p as one entry.
func (cb *CircularBuffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	entry := append([]byte(nil), p...)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if len(cb.entries) < cap(cb.entries) {
		cb.entries = append(cb.entries, entry)

		return len(p), nil
	}

	cb.entries[cb.next] = entry
	cb.next = (cb.next + 1) % len(cb.entries)
	cb.dropped++

	return len(p), nil
}

// Entries returns copies of the held entries, oldest first.
func (cb *CircularBuffer) Entries() [][]byte {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if len(cb.entries) == 0 {
		return nil
	}

	out := make([][]byte, 0, len(cb.entries))
	for i := range cb.entries {
		e := cb.entries[(cb.next+i)%len(cb.entries)]
		out = append(out, append([]byte(nil), e...))
	}

	return out
}

// Len returns the number of held entries.
func (cb *CircularBuffer) Len() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return len(cb.entries)
}

// Cap returns the maximum number of held entries.
func (cb *CircularBuffer) Cap() int {
	return cap(cb.entries)
}

// Dropped returns how many entries were overwritten since the last
// [CircularBuffer.Reset].
func (cb *CircularBuffer) Dropped() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.dropped
}

// Reset removes all entries.
func (cb *CircularBuffer) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	clear(cb.entries)
	cb.entries = cb.entries[:0]
	cb.next = 0
	cb.dropped = 0
}

// WriteTo writes the held entries to w, oldest first.
func (cb *CircularBuffer) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, e := range cb.Entries() {
		n, err := w.Write(e)
		total += int64(n)

		if err != nil {
			return total, fmt.Errorf("write entry: %w", err)
		}
	}

	return total, nil
}
