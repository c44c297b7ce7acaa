// Package fonts discovers installed font families per writing system and
// tracks which of them are enabled for random selection.
//
// A [Catalog] lists the families that support a [WritingSystem]. The
// [Fontconfig] catalog queries the fontconfig command line tools, while
// [Static] serves a fixed list from configuration. A [LanguageFontMap]
// records the user's choices; families without an entry are enabled.
package fonts
