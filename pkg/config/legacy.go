package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/macropower/cardfont/api/v1beta1/configs"
	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/compare"
	"github.com/macropower/cardfont/pkg/finder"
	"github.com/macropower/cardfont/pkg/fonts"
	"github.com/macropower/cardfont/pkg/yaml"
)

// ErrLegacy is returned when a legacy add-on configuration cannot be
// converted.
var ErrLegacy = errors.New("invalid legacy configuration")

// legacyConfig is the add-on's config.json. Panel widgets are keyed by their
// display labels, and logic selectors are button indexes.
type legacyConfig struct {
	Panels    map[string]*legacyPanel    `json:"panels"`
	Languages map[string]map[string]bool `json:"languages"`
}

type legacyPanel struct {
	ApplyToPreviewer *bool         `json:"applyToPreviewer"`
	Widgets          legacyWidgets `json:"widgets"`
	Logic            int           `json:"logic"`
	Negate           bool          `json:"negate"`
}

type legacyWidgets struct {
	Field       *legacyField     `json:"Field"`
	Deck        *legacyText      `json:"Deck Name (regex)"`
	NoteType    *legacyText      `json:"Note Type (regex)"`
	Tags        *legacyTags      `json:"Tags (regex)"`
	CardState   *legacyCardState `json:"Card States"`
	SuccessRate *legacyCompare   `json:"Success Rate"`
	PassCount   *legacyCompare   `json:"# of Passes"`
}

type legacyText struct {
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

type legacyTags struct {
	Text    string `json:"text"`
	Logic   int    `json:"logic"`
	Enabled bool   `json:"enabled"`
}

type legacyCardState struct {
	Options []int `json:"options"`
	Enabled bool  `json:"enabled"`
}

type legacyCompare struct {
	Comparator compare.Op `json:"comparator"`
	Value      int        `json:"value"`
	Enabled    bool       `json:"enabled"`
}

type legacyField struct {
	NameText         string     `json:"nameText"`
	ContentsText     string     `json:"contentsText"`
	LengthComparator compare.Op `json:"lengthComparator"`
	KanjiComparator  compare.Op `json:"kanjiComparator"`
	LengthValue      int        `json:"lengthValue"`
	KanjiValue       int        `json:"kanjiValue"`
	Enabled          bool       `json:"enabled"`
	ContentsEnabled  bool       `json:"contentsEnabled"`
	LengthEnabled    bool       `json:"lengthEnabled"`
	KanjiEnabled     bool       `json:"kanjiEnabled"`
}

// ImportLegacy converts the original add-on's JSON configuration into a
// validated [configs.Config]. Languages that are not known writing systems
// are dropped with a warning.
func ImportLegacy(data []byte) (*configs.Config, error) {
	var lc legacyConfig

	err := yaml.Unmarshal(data, &lc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLegacy, err)
	}

	cfg := configs.New()
	if len(lc.Panels) > 0 {
		cfg.Panels = make(map[string]*finder.RuleSet, len(lc.Panels))
	}

	for _, name := range slices.Sorted(maps.Keys(lc.Panels)) {
		rs, err := lc.Panels[name].ruleSet(name)
		if err != nil {
			return nil, fmt.Errorf("%w: panel %q: %w", ErrLegacy, name, err)
		}

		cfg.Panels[name] = rs
	}

	for _, ws := range slices.Sorted(maps.Keys(lc.Languages)) {
		if _, err := fonts.Lookup(ws); err != nil {
			slog.Warn("skipping unknown writing system", slog.String("language", ws))
			continue
		}

		for family, on := range lc.Languages[ws] {
			cfg.Languages.Set(ws, family, on)
		}
	}

	cfg.EnsureDefaults()

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLegacy, err)
	}

	return cfg, nil
}

func legacyLogic(i int) (finder.Logic, error) {
	switch i {
	case 0:
		return finder.LogicOr, nil
	case 1:
		return finder.LogicAnd, nil
	}

	return "", fmt.Errorf("%w: %d", finder.ErrInvalidLogic, i)
}

func (lp *legacyPanel) ruleSet(name string) (*finder.RuleSet, error) {
	rs := finder.New(name)
	if lp == nil {
		return rs, nil
	}

	logic, err := legacyLogic(lp.Logic)
	if err != nil {
		return nil, err
	}

	rs.Logic = logic
	rs.Negate = lp.Negate

	if lp.ApplyToPreviewer != nil {
		rs.ApplyToPreviewer = *lp.ApplyToPreviewer
	}

	w := lp.Widgets

	if w.Deck != nil {
		rs.Deck = &finder.Deck{Text: w.Deck.Text, Enabled: w.Deck.Enabled}
	}

	if w.NoteType != nil {
		rs.NoteType = &finder.NoteType{Text: w.NoteType.Text, Enabled: w.NoteType.Enabled}
	}

	if w.Tags != nil {
		logic, err := legacyLogic(w.Tags.Logic)
		if err != nil {
			return nil, fmt.Errorf("tags: %w", err)
		}

		rs.Tags = &finder.Tags{Text: w.Tags.Text, Logic: logic, Enabled: w.Tags.Enabled}
	}

	if w.CardState != nil {
		opts := make([]card.Queue, 0, len(w.CardState.Options))
		for _, o := range w.CardState.Options {
			q := card.Queue(o)
			if !q.Selectable() {
				return nil, fmt.Errorf("card states: invalid option %d", o)
			}

			opts = append(opts, q)
		}

		rs.CardState = &finder.CardState{Options: opts, Enabled: w.CardState.Enabled}
	}

	if w.SuccessRate != nil {
		rs.SuccessRate = &finder.SuccessRate{
			Comparator: w.SuccessRate.Comparator,
			Value:      w.SuccessRate.Value,
			Enabled:    w.SuccessRate.Enabled,
		}
	}

	if w.PassCount != nil {
		rs.PassCount = &finder.PassCount{
			Comparator: w.PassCount.Comparator,
			Value:      w.PassCount.Value,
			Enabled:    w.PassCount.Enabled,
		}
	}

	if f := w.Field; f != nil {
		rs.Field = &finder.Field{
			NameText:         f.NameText,
			ContentsText:     f.ContentsText,
			LengthComparator: f.LengthComparator,
			ScriptComparator: f.KanjiComparator,
			LengthValue:      f.LengthValue,
			ScriptValue:      f.KanjiValue,
			Enabled:          f.Enabled,
			ContentsEnabled:  f.ContentsEnabled,
			LengthEnabled:    f.LengthEnabled,
			ScriptEnabled:    f.KanjiEnabled,
		}
	}

	rs.EnsureDefaults()

	return rs, nil
}
