// Package card defines the read-only views of cards and notes that finder
// predicates evaluate.
//
// The host application owns the real card, note and collection objects. It
// exposes them through the [Card], [Note] and [Source] interfaces. [Snapshot]
// and [StaticNote] are plain in-memory implementations, useful for tests and
// for hosts that already hold the data.
package card
