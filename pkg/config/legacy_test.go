package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/compare"
	"github.com/macropower/cardfont/pkg/config"
	"github.com/macropower/cardfont/pkg/finder"
)

const legacyJSON = `{
  "panels": {
    "RandomFont": {
      "logic": 1,
      "negate": true,
      "applyToPreviewer": false,
      "widgets": {
        "Field": {
          "enabled": true,
          "contentsEnabled": false,
          "lengthEnabled": true,
          "kanjiEnabled": true,
          "nameText": "^Expression$",
          "contentsText": "",
          "lengthComparator": "<=",
          "lengthValue": 4,
          "kanjiComparator": ">",
          "kanjiValue": 1
        },
        "Deck Name (regex)": {"enabled": true, "text": "Japanese"},
        "Note Type (regex)": {"enabled": false, "text": ""},
        "Tags (regex)": {"enabled": true, "text": "jp anim", "logic": 0},
        "Card States": {"enabled": true, "options": [0, 2]},
        "Success Rate": {"enabled": false, "comparator": "<", "value": 80},
        "# of Passes": {"enabled": true, "comparator": "<", "value": 3}
      }
    }
  },
  "languages": {
    "Japanese": {"IPAGothic": true, "IPAMincho": false},
    "Not A Script": {"Whatever": true}
  }
}`

func TestImportLegacy(t *testing.T) {
	t.Parallel()

	cfg, err := config.ImportLegacy([]byte(legacyJSON))
	require.NoError(t, err)

	require.Equal(t, []string{"RandomFont"}, cfg.PanelNames())

	rs := cfg.Panels["RandomFont"]
	assert.Equal(t, "RandomFont", rs.Name)
	assert.Equal(t, finder.LogicAnd, rs.Logic)
	assert.True(t, rs.Negate)
	assert.False(t, rs.ApplyToPreviewer)

	assert.Equal(t, &finder.Deck{Text: "Japanese", Enabled: true}, rs.Deck)
	assert.Equal(t, &finder.NoteType{}, rs.NoteType)
	assert.Equal(t, &finder.Tags{Text: "jp anim", Logic: finder.LogicOr, Enabled: true}, rs.Tags)
	assert.Equal(t, &finder.CardState{
		Options: []card.Queue{card.QueueNew, card.QueueReview},
		Enabled: true,
	}, rs.CardState)
	assert.Equal(t, &finder.SuccessRate{Comparator: compare.Less, Value: 80}, rs.SuccessRate)
	assert.Equal(t, &finder.PassCount{Comparator: compare.Less, Value: 3, Enabled: true}, rs.PassCount)
	assert.Equal(t, &finder.Field{
		NameText:         "^Expression$",
		LengthComparator: compare.LessEqual,
		ScriptComparator: compare.Greater,
		LengthValue:      4,
		ScriptValue:      1,
		Enabled:          true,
		LengthEnabled:    true,
		ScriptEnabled:    true,
	}, rs.Field)

	assert.True(t, cfg.Languages.IsEnabled("Japanese", "IPAGothic"))
	assert.False(t, cfg.Languages.IsEnabled("Japanese", "IPAMincho"))
	assert.NotContains(t, cfg.Languages, "Not A Script")
}

func TestImportLegacy_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.ImportLegacy([]byte(`{"panels": {"RandomFont": {}}}`))
	require.NoError(t, err)

	assert.Equal(t, finder.New("RandomFont"), cfg.Panels["RandomFont"])
	assert.Empty(t, cfg.Languages)
}

func TestImportLegacy_Errors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		wantErr error
	}{
		"not json": {
			input: `{"panels": [`,
		},
		"panel logic out of range": {
			input:   `{"panels": {"RandomFont": {"logic": 2}}}`,
			wantErr: finder.ErrInvalidLogic,
		},
		"tags logic out of range": {
			input:   `{"panels": {"RandomFont": {"widgets": {"Tags (regex)": {"logic": 5}}}}}`,
			wantErr: finder.ErrInvalidLogic,
		},
		"card state out of range": {
			input: `{"panels": {"RandomFont": {"widgets": {"Card States": {"options": [7]}}}}}`,
		},
		"unknown comparator": {
			input: `{"panels": {"RandomFont": {"widgets": {"# of Passes": {"comparator": "=~"}}}}}`,
		},
		"invalid pattern": {
			input: `{"panels": {"RandomFont": {"widgets": {"Deck Name (regex)": {"text": "(", "enabled": true}}}}}`,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := config.ImportLegacy([]byte(tc.input))
			require.ErrorIs(t, err, config.ErrLegacy)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
