package finder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/compare"
	"github.com/macropower/cardfont/pkg/finder"
	"github.com/macropower/cardfont/pkg/store"
)

func TestLoadSave(t *testing.T) {
	t.Parallel()

	backend := store.NewMemory(nil)
	panels := store.New(backend).Root().AddBranch("panels", nil)
	b := panels.AddBranch("jp", finder.Defaults())

	// Nothing stored yet: defaults apply.
	rs, err := finder.Load(b)
	require.NoError(t, err)
	assert.Equal(t, finder.New("jp"), rs)

	rs.Logic = finder.LogicAnd
	rs.ApplyToPreviewer = true
	rs.Tags.Enabled = true
	rs.Tags.Text = "jp anim"
	rs.Tags.Logic = finder.LogicAnd
	rs.CardState.Enabled = true
	rs.CardState.Options = []card.Queue{card.QueueNew, card.QueueReview}
	rs.SuccessRate.Comparator = compare.Less
	rs.SuccessRate.Value = 80
	rs.Field.Enabled = true
	rs.Field.NameText = "^Expression$"
	rs.Field.ScriptEnabled = true
	rs.Field.Script = "Hiragana"
	rs.Field.ScriptComparator = compare.GreaterEqual
	rs.Field.ScriptValue = 2

	require.NoError(t, finder.Save(b, rs))
	assert.Equal(t, 1, backend.Saves())

	got, err := finder.Load(b)
	require.NoError(t, err)
	assert.Equal(t, rs, got)

	stored, err := b.Read("cardState")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"enabled": true,
		"options": []any{"New", "Reviewing"},
	}, stored)
}

func TestSave_Invalid(t *testing.T) {
	t.Parallel()

	backend := store.NewMemory(nil)
	b := store.New(backend).Root().AddBranch("jp", finder.Defaults())

	rs := finder.New("jp")
	rs.Deck.Enabled = true
	rs.Deck.Text = "(("

	require.Error(t, finder.Save(b, rs))
	assert.Zero(t, backend.Saves())
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	b := store.New(store.NewMemory(map[string]any{
		"jp": map[string]any{"passCount": map[string]any{"comparator": "~="}},
	})).Root().AddBranch("jp", finder.Defaults())

	_, err := finder.Load(b)
	require.Error(t, err)
}

func TestLoadAll(t *testing.T) {
	t.Parallel()

	panels := store.New(store.NewMemory(map[string]any{
		"panels": map[string]any{
			"zh": map[string]any{"negate": true},
			"jp": map[string]any{"deck": map[string]any{"enabled": true, "text": "日本"}},
		},
	})).Root().AddBranch("panels", nil)

	finder.Panel(panels, "ko")

	got, err := finder.LoadAll(panels)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "jp", got[0].Name)
	assert.True(t, got[0].Deck.Enabled)
	assert.Equal(t, "日本", got[0].Deck.Text)
	assert.Equal(t, "ko", got[1].Name)
	assert.Equal(t, "zh", got[2].Name)
	assert.True(t, got[2].Negate)
	assert.Equal(t, compare.Equal, got[2].PassCount.Comparator)
}

func TestLoadAll_Partial(t *testing.T) {
	t.Parallel()

	panels := store.New(store.NewMemory(map[string]any{
		"panels": map[string]any{
			"a": map[string]any{"deck": map[string]any{"enabled": true, "text": "(("}},
			"b": map[string]any{"deck": map[string]any{"enabled": true, "text": "Japanese"}},
			"c": map[string]any{"deck": map[string]any{"enabled": false, "text": "(("}},
		},
	})).Root().AddBranch("panels", nil)

	got, err := finder.LoadAll(panels)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule set "a"`)
	assert.NotContains(t, err.Error(), `rule set "c"`)

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "c", got[1].Name)
}
