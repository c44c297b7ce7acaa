package compare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/cardfont/pkg/compare"
)

func TestOp_Apply(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		op   compare.Op
		a, b float64
		want bool
	}{
		"less true":           {op: compare.Less, a: 1, b: 2, want: true},
		"less false on equal": {op: compare.Less, a: 2, b: 2, want: false},
		"less equal":          {op: compare.LessEqual, a: 2, b: 2, want: true},
		"equal":               {op: compare.Equal, a: 0.5, b: 0.5, want: true},
		"greater equal":       {op: compare.GreaterEqual, a: 1, b: 2, want: false},
		"greater":             {op: compare.Greater, a: 3, b: 2, want: true},
		"not equal":           {op: compare.NotEqual, a: 3, b: 2, want: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.op.Apply(tc.a, tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOp_Unknown(t *testing.T) {
	t.Parallel()

	for _, sym := range []string{"=", "<>", "1 or True", "__import__('os')"} {
		_, err := compare.Parse(sym)
		require.ErrorIs(t, err, compare.ErrUnknownOp)

		_, err = compare.Op(sym).Apply(1, 1)
		require.ErrorIs(t, err, compare.ErrUnknownOp)
	}
}

func TestOp_UnmarshalText(t *testing.T) {
	t.Parallel()

	var op compare.Op

	require.NoError(t, op.UnmarshalText([]byte(">=")))
	assert.Equal(t, compare.GreaterEqual, op)

	require.NoError(t, op.UnmarshalText(nil))
	assert.Equal(t, compare.Equal, op)

	require.ErrorIs(t, op.UnmarshalText([]byte("===")), compare.ErrUnknownOp)
}

func TestOp_Ints(t *testing.T) {
	t.Parallel()

	got, err := compare.Less.Ints(2, 3)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = compare.Less.Ints(3, 3)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestOp_Zero(t *testing.T) {
	t.Parallel()

	var op compare.Op

	assert.True(t, op.Valid())
	assert.Equal(t, "==", op.String())

	got, err := op.Apply(4, 4)
	require.NoError(t, err)
	assert.True(t, got)

	b, err := op.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "==", string(b))
}
