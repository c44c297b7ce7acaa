package finder

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/compare"
)

// Field tests the first note field whose name matches NameText. The field
// value is stripped with [StripField] before the enabled sub-checks run, and
// every enabled sub-check must pass.
type Field struct {
	NameText         string     `json:"nameText" jsonschema:"title=Field Name (regex)" validate:"regexp"`
	ContentsText     string     `json:"contentsText" jsonschema:"title=Field Contents (regex)" validate:"regexp=ContentsEnabled"`
	LengthComparator compare.Op `json:"lengthComparator" validate:"comparator"`
	ScriptComparator compare.Op `json:"scriptComparator" validate:"comparator"`
	// Script names the characters counted by the script check: "kanji" for
	// U+4E00..U+9FAF, or a Unicode script such as "Hiragana".
	Script          string `json:"script,omitempty" jsonschema:"title=Script,default=kanji" validate:"omitempty,script=ScriptEnabled"`
	LengthValue     int    `json:"lengthValue" jsonschema:"title=Field Length,minimum=0" validate:"min=0"`
	ScriptValue     int    `json:"scriptValue" jsonschema:"title=Number of Script Characters,minimum=0" validate:"min=0"`
	Enabled         bool   `json:"enabled" jsonschema:"title=Enabled"`
	ContentsEnabled bool   `json:"contentsEnabled" jsonschema:"title=Check Contents"`
	LengthEnabled   bool   `json:"lengthEnabled" jsonschema:"title=Check Length"`
	ScriptEnabled   bool   `json:"scriptEnabled" jsonschema:"title=Check Script Count"`
}

func (*Field) Name() string { return "Field" }

func (p *Field) IsEnabled() bool { return p != nil && p.Enabled }

func (p *Field) Match(c card.Card) (bool, error) {
	if p.NameText == "" {
		return false, nil
	}

	n, err := c.Note()
	if err != nil {
		return false, fmt.Errorf("note: %w", err)
	}

	for _, f := range n.Fields() {
		ok, err := search(p.NameText, f.Name)
		if err != nil {
			return false, err
		}
		if ok {
			return p.check(StripField(f.Value))
		}
	}

	return false, nil
}

func (p *Field) check(value string) (bool, error) {
	if p.ContentsEnabled {
		if p.ContentsText == "" {
			return false, nil
		}

		ok, err := search(p.ContentsText, value)
		if err != nil || !ok {
			return false, err
		}
	}

	if p.LengthEnabled {
		length := utf8.RuneCountInString(strings.ReplaceAll(value, " ", ""))

		ok, err := p.LengthComparator.Ints(length, p.LengthValue)
		if err != nil || !ok {
			return false, err
		}
	}

	if p.ScriptEnabled {
		count, err := CountScript(value, p.Script)
		if err != nil {
			return false, err
		}

		ok, err := p.ScriptComparator.Ints(count, p.ScriptValue)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}
