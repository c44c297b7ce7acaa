package hook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/hook"
	"github.com/macropower/cardfont/pkg/store"
)

type markTransform struct {
	err error
}

func (m markTransform) Question(_ context.Context, text string) (string, error) {
	return text + "+Q", m.err
}

func (m markTransform) Answer(_ context.Context, text string) (string, error) {
	return text + "+A", m.err
}

func newSession(t *testing.T, panels map[string]any, tr hook.Transform) *hook.Session {
	t.Helper()

	root := store.New(store.NewMemory(map[string]any{"panels": panels})).Root()

	s, err := hook.NewSession(
		hook.WithPanels(root.AddBranch("panels", nil)),
		hook.WithTransform(tr),
	)
	require.NoError(t, err)

	return s
}

func jpPanel(applyToPreviewer bool) map[string]any {
	return map[string]any{
		"applyToPreviewer": applyToPreviewer,
		"deck":             map[string]any{"enabled": true, "text": "Japanese"},
	}
}

func TestSession_Filter(t *testing.T) {
	t.Parallel()

	jp := card.NewSnapshot(1, card.NewNote("Basic", nil, "Front", "猫"), card.WithDeck(2, "Japanese"))
	es := card.NewSnapshot(2, card.NewNote("Basic", nil, "Front", "gato"), card.WithDeck(3, "Spanish"))

	tcs := map[string]struct {
		card    card.Card
		kind    hook.Kind
		preview bool
		want    string
	}{
		"review question": {card: jp, kind: hook.KindReviewQuestion, want: "text+Q"},
		"review answer":   {card: jp, kind: hook.KindReviewAnswer, want: "text+A"},
		"no match":        {card: es, kind: hook.KindReviewQuestion, want: "text"},
		"layout question": {card: jp, kind: hook.KindLayoutQuestion, want: "text"},
		"layout answer":   {card: jp, kind: hook.KindLayoutAnswer, want: "text"},
		"preview skipped": {card: jp, kind: hook.KindPreviewQuestion, want: "text"},
		"preview applied": {card: jp, kind: hook.KindPreviewAnswer, preview: true, want: "text+A"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := newSession(t, map[string]any{"jp": jpPanel(tc.preview)}, markTransform{})

			assert.Equal(t, tc.want, s.Filter("text", tc.card, tc.kind))
		})
	}
}

func TestSession_FilterErrors(t *testing.T) {
	t.Parallel()

	jp := card.NewSnapshot(1, card.NewNote("Basic", nil, "Front", "猫"), card.WithDeck(2, "Japanese"))

	s := newSession(t, map[string]any{"jp": jpPanel(false)}, markTransform{err: errors.New("boom")})

	assert.Equal(t, "text", s.Filter("text", jp, hook.KindReviewQuestion))

	_, err := s.Render(context.Background(), "text", jp, hook.KindReviewQuestion)
	require.Error(t, err)
}

func TestSession_IndependentPanels(t *testing.T) {
	t.Parallel()

	jp := card.NewSnapshot(1, card.NewNote("Basic", nil, "Front", "猫"), card.WithDeck(2, "Japanese"))

	tcs := map[string]struct {
		broken    map[string]any
		want      string
		wantPanel string
		alone     bool
	}{
		"invalid pattern": {
			broken: map[string]any{
				"deck": map[string]any{"enabled": true, "text": "(("},
			},
			want:      "text+Q",
			wantPanel: "b",
		},
		"invalid pattern in disabled predicate": {
			broken: map[string]any{
				"deck":     map[string]any{"enabled": false, "text": "(("},
				"noteType": map[string]any{"enabled": true, "text": "^Basic$"},
			},
			want:      "text+Q",
			wantPanel: "a",
		},
		"invalid logic": {
			broken: map[string]any{
				"logic": "xor",
				"deck":  map[string]any{"enabled": true, "text": "Japanese"},
			},
			want:      "text+Q",
			wantPanel: "b",
		},
		"non-matching panel": {
			broken: map[string]any{
				"deck": map[string]any{"enabled": true, "text": "Spanish"},
			},
			want:      "text+Q",
			wantPanel: "b",
		},
		"only broken panel": {
			broken: map[string]any{
				"deck": map[string]any{"enabled": true, "text": "(("},
			},
			want:  "text",
			alone: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			panels := map[string]any{"a": tc.broken}
			if !tc.alone {
				panels["b"] = jpPanel(false)
			}

			s := newSession(t, panels, markTransform{})

			assert.Equal(t, tc.want, s.Filter("text", jp, hook.KindReviewQuestion))

			d, err := s.Evaluate(context.Background(), jp, hook.KindReviewQuestion)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPanel, d.Panel)
		})
	}
}

func TestSession_FirstMatchingPanel(t *testing.T) {
	t.Parallel()

	jp := card.NewSnapshot(1, card.NewNote("Basic", nil, "Front", "猫"), card.WithDeck(2, "Japanese"))

	s := newSession(t, map[string]any{
		"b": jpPanel(false),
		"a": map[string]any{"negate": true},
		"c": jpPanel(false),
	}, markTransform{})

	d, err := s.Evaluate(context.Background(), jp, hook.KindReviewQuestion)
	require.NoError(t, err)
	assert.Equal(t, "a", d.Panel)

	d, err = s.Evaluate(context.Background(), jp, hook.KindLayoutQuestion)
	require.NoError(t, err)
	assert.Empty(t, d.Panel)
	assert.NotEmpty(t, d.Skipped)
}

func TestSession_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	jp := card.NewSnapshot(1, card.NewNote("Basic", nil, "Front", "猫"), card.WithDeck(2, "Japanese"))
	host := hook.NewLocal(hook.Capabilities{})
	s := newSession(t, map[string]any{"jp": jpPanel(true)}, markTransform{})

	require.ErrorIs(t, s.Close(), hook.ErrNotRegistered)

	require.NoError(t, s.Register(ctx, host))
	require.ErrorIs(t, s.Register(ctx, host), hook.ErrRegistered)
	assert.Equal(t, 1, host.Len())
	assert.Equal(t, "x+Q", host.Show("x", jp, hook.KindReviewQuestion))

	require.NoError(t, s.Close())
	assert.Zero(t, host.Len())
	assert.Equal(t, "x", host.Show("x", jp, hook.KindReviewQuestion))

	// A closed session can be registered again.
	require.NoError(t, s.Register(ctx, host))
	assert.Equal(t, 1, host.Len())
}

func TestNewSession_Incomplete(t *testing.T) {
	t.Parallel()

	_, err := hook.NewSession(hook.WithTransform(markTransform{}))
	require.ErrorIs(t, err, hook.ErrIncomplete)

	root := store.New(store.NewMemory(nil)).Root()

	_, err = hook.NewSession(hook.WithPanels(root))
	require.ErrorIs(t, err, hook.ErrIncomplete)
}

func TestKind(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		kind     hook.Kind
		question bool
		preview  bool
		layout   bool
	}{
		"review question":  {kind: hook.KindReviewQuestion, question: true},
		"review answer":    {kind: hook.KindReviewAnswer},
		"preview question": {kind: hook.KindPreviewQuestion, question: true, preview: true},
		"preview answer":   {kind: hook.KindPreviewAnswer, preview: true},
		"layout question":  {kind: hook.KindLayoutQuestion, question: true, layout: true},
		"layout answer":    {kind: hook.KindLayoutAnswer, layout: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.question, tc.kind.IsQuestion())
			assert.Equal(t, tc.preview, tc.kind.IsPreview())
			assert.Equal(t, tc.layout, tc.kind.IsLayout())

			parsed, err := hook.ParseKind(tc.kind.String())
			require.NoError(t, err)
			assert.Equal(t, tc.kind, parsed)
		})
	}

	_, err := hook.ParseKind("reviewer")
	require.ErrorIs(t, err, hook.ErrUnknownKind)
}
