// Package finder evaluates rules that decide whether a card should be
// transformed.
//
// A [RuleSet] combines up to seven predicates ([Deck], [NoteType], [Tags],
// [CardState], [SuccessRate], [PassCount] and [Field]). Only enabled
// predicates take part in evaluation. Their results are combined with the
// rule set's [Logic], and the combined result is optionally negated. A rule
// set without enabled predicates never matches before negation.
//
// Regular expressions use a backtracking dialect with lookaround and
// backreferences, and search anywhere in the subject. Every match runs with a
// timeout, reported as an error.
package finder
