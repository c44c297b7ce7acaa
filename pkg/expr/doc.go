// Package expr filters previewed cards with CEL (Common Expression Language)
// expressions.
//
// Expressions see one variable, `card`, a map with the keys:
//   - `id` (int): The card id
//   - `deck` (string): The home deck name
//   - `noteType` (string): The note type name
//   - `sortField` (string): The name of the note type's sort field
//   - `sortValue` (string): The visible text of the sort field
//   - `tags` (list<string>): The note's tags
//   - `reps` (int): The number of reviews
//
// In addition to the standard and extension string, list and math functions,
// expressions can call:
//   - strip(string): The visible text of a field value
//   - countScript(string, script): Runes of a script, e.g. "kanji"
package expr
