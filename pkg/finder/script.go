package finder

import (
	"errors"
	"fmt"
	"unicode"
)

// ScriptKanji selects the CJK Unified Ideographs range U+4E00..U+9FAF.
const ScriptKanji = "kanji"

// ErrUnknownScript is returned for a script name that is neither
// [ScriptKanji] nor a Unicode script known to the runtime.
var ErrUnknownScript = errors.New("unknown script")

var kanji = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x4E00, Hi: 0x9FAF, Stride: 1}},
}

// scriptTable resolves a script name. An empty name means [ScriptKanji].
func scriptTable(name string) (*unicode.RangeTable, error) {
	if name == "" || name == ScriptKanji {
		return kanji, nil
	}

	if t, ok := unicode.Scripts[name]; ok {
		return t, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownScript, name)
}

// CountScript counts the runes of s that belong to the named script.
func CountScript(s, script string) (int, error) {
	t, err := scriptTable(script)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, r := range s {
		if unicode.Is(t, r) {
			n++
		}
	}

	return n, nil
}
