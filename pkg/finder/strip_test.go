package finder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/cardfont/pkg/finder"
)

func TestStripField(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   string
		want string
	}{
		"plain":               {in: "cat", want: "cat"},
		"markup":              {in: `<div class="x"><b>猫</b>だ</div>`, want: "猫だ"},
		"character refs":      {in: "R&amp;D &#x732B;", want: "R&D 猫"},
		"furigana":            {in: "日本[にほん]語[ご]", want: "日本語"},
		"furigana non-greedy": {in: "a[b]c[d]e", want: "ace"},
		"line break":          {in: "a<br>b", want: "ab"},
		"decomposed kana":     {in: "\u304b\u3099", want: "\u304c"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, finder.StripField(tc.in))
		})
	}
}

func TestCountScript(t *testing.T) {
	t.Parallel()

	n, err := finder.CountScript("日本語をはなす", finder.ScriptKanji)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = finder.CountScript("日本語をはなす", "Hiragana")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = finder.CountScript("日本語", "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = finder.CountScript("x", "Elvish")
	require.ErrorIs(t, err, finder.ErrUnknownScript)
}

func TestLogic_Combine(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		logic   finder.Logic
		in      []bool
		want    bool
		wantErr bool
	}{
		"or any":   {logic: finder.LogicOr, in: []bool{false, true}, want: true},
		"or none":  {logic: finder.LogicOr, in: []bool{false, false}, want: false},
		"and all":  {logic: finder.LogicAnd, in: []bool{true, true}, want: true},
		"and some": {logic: finder.LogicAnd, in: []bool{true, false}, want: false},
		"invalid":  {logic: "xor", in: []bool{true}, wantErr: true},
		"empty":    {logic: "", in: []bool{true}, wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.logic.Combine(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, finder.ErrInvalidLogic)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
