// Package anki reads cards, notes and review history from an Anki collection
// file.
//
// Both the legacy schema, where note types and decks are stored as JSON in
// the col table, and the modern schema with separate notetypes, fields and
// decks tables are supported. A [Collection] is a read-only [card.Source].
package anki
