// Package compare provides the numeric comparators used by finder predicates.
//
// Comparators are a closed set of symbols (<, <=, ==, >=, >, !=). Each symbol
// maps to a typed comparison function through a fixed dispatch table, so a
// comparator read from configuration can never be anything other than one of
// these six operations.
package compare
