package expr_test

import (
	"testing"

	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/traits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/cardfont/pkg/expr"
	"github.com/macropower/cardfont/pkg/finder"
)

var cat = finder.Match{
	ID:         1000,
	Deck:       "Japanese::Core",
	NoteType:   "Japanese (recognition)",
	SortField:  "Expression",
	SortValue:  "猫だ",
	Tags:       []string{"anime", "n5"},
	Repetition: 3,
}

func TestFilter_Match(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		expression string
		want       bool
	}{
		"reps": {
			expression: `card.reps > 2`,
			want:       true,
		},
		"tag membership": {
			expression: `"n5" in card.tags`,
			want:       true,
		},
		"missing tag": {
			expression: `"n1" in card.tags`,
			want:       false,
		},
		"deck prefix": {
			expression: `card.deck.startsWith("Japanese::")`,
			want:       true,
		},
		"count kanji": {
			expression: `countScript(card.sortValue, "kanji") == 1`,
			want:       true,
		},
		"strip markup": {
			expression: `strip("<b>猫</b>[ねこ]") == "猫"`,
			want:       true,
		},
		"string extensions": {
			expression: `card.noteType.lowerAscii().contains("recognition")`,
			want:       true,
		},
		"id": {
			expression: `card.id == 1000 && card.sortField == "Expression"`,
			want:       true,
		},
		"constant": {
			expression: `false`,
			want:       false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f, err := expr.NewFilter(tc.expression)
			require.NoError(t, err)
			assert.Equal(t, tc.expression, f.String())

			got, err := f.Match(cat)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewFilter_Errors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		expression string
		err        error
	}{
		"syntax": {
			expression: `card.reps >`,
		},
		"unknown variable": {
			expression: `note.reps > 2`,
		},
		"not boolean": {
			expression: `"kanji"`,
			err:        expr.ErrNotBool,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := expr.NewFilter(tc.expression)
			require.Error(t, err)

			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestFilter_MatchErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		expression string
		err        error
	}{
		"dynamic non-boolean": {
			expression: `card.deck`,
			err:        expr.ErrNotBool,
		},
		"unknown script": {
			expression: `countScript(card.sortValue, "runic") > 0`,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f, err := expr.NewFilter(tc.expression)
			require.NoError(t, err)

			_, err = f.Match(cat)
			require.Error(t, err)

			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	t.Parallel()

	dog := finder.Match{ID: 1001, Deck: "Spanish", SortValue: "perro", Tags: []string{"es"}}

	f, err := expr.NewFilter(`card.deck == "Spanish"`)
	require.NoError(t, err)

	got, err := f.Apply([]finder.Match{cat, dog})
	require.NoError(t, err)
	assert.Equal(t, []finder.Match{dog}, got)

	var none *expr.Filter

	got, err = none.Apply([]finder.Match{cat, dog})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestConvertToCELValue(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input any
		want  any
	}{
		"nil":    {input: nil, want: types.NullValue},
		"bool":   {input: true, want: types.Bool(true)},
		"int":    {input: 42, want: types.Int(42)},
		"int64":  {input: int64(-7), want: types.Int(-7)},
		"uint64": {input: uint64(9), want: types.Int(9)},
		"float":  {input: 1.5, want: types.Double(1.5)},
		"string": {input: "猫", want: types.String("猫")},
		"struct": {input: struct{}{}, want: types.NullValue},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, expr.ConvertToCELValue(tc.input))
		})
	}
}

func TestConvertToCELValue_Collections(t *testing.T) {
	t.Parallel()

	list, ok := expr.ConvertToCELValue([]string{"a", "b"}).(traits.Lister)
	require.True(t, ok)
	assert.Equal(t, types.Int(2), list.Size())

	m, ok := expr.ConvertToCELValue(expr.Variables(cat)).(traits.Mapper)
	require.True(t, ok)

	deck, found := m.Find(types.String("deck"))
	require.True(t, found)
	assert.Equal(t, types.String("Japanese::Core"), deck)
}
