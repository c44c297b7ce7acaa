package mcp_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/compare"
	"github.com/macropower/cardfont/pkg/finder"
	"github.com/macropower/cardfont/pkg/fonts"
	"github.com/macropower/cardfont/pkg/hook"
	"github.com/macropower/cardfont/pkg/mcp"
	"github.com/macropower/cardfont/pkg/store"
	"github.com/macropower/cardfont/pkg/transform"
)

func newTestServer(t *testing.T) *mcp.Server {
	t.Helper()

	src := card.NewSnapshots(
		card.NewSnapshot(1,
			card.NewNote("Japanese", []string{"jp"}, "Expression", "猫", "Meaning", "cat"),
			card.WithDeck(2, "Japanese::Core"),
			card.WithReviews(3, 1),
		),
		card.NewSnapshot(2,
			card.NewNote("Basic", []string{"es"}, "Front", "gato", "Back", "cat"),
			card.WithDeck(3, "Spanish"),
		),
	)

	panels := store.New(store.NewMemory(nil)).Root().AddBranch("panels", nil)

	kanji := finder.New("Kanji")
	kanji.Deck.Text = "^Japanese"
	kanji.Deck.Enabled = true
	kanji.ApplyToPreviewer = false
	require.NoError(t, finder.Save(finder.Panel(panels, "Kanji"), kanji))

	passes := finder.New("Passes")
	passes.PassCount.Comparator = compare.GreaterEqual
	passes.PassCount.Value = 5
	passes.PassCount.Enabled = true
	require.NoError(t, finder.Save(finder.Panel(panels, "Passes"), passes))

	fs := &transform.Fonts{
		Catalog: fonts.NewStatic(map[string][]string{"Japanese": {"FontX"}}, "Fallback"),
		Enabled: fonts.LanguageFontMap{},
		Systems: []string{"Japanese", "Latin"},
	}

	return mcp.NewServer("", src, panels, fs)
}

func connect(t *testing.T, s *mcp.Server) *sdk.ClientSession {
	t.Helper()

	ctx := t.Context()
	serverT, clientT := sdk.NewInMemoryTransports()

	ss, err := s.Server().Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return cs
}

func callTool[Out any](t *testing.T, cs *sdk.ClientSession, tool string, args map[string]any) (Out, *sdk.CallToolResult) {
	t.Helper()

	var out Out

	res, err := cs.CallTool(t.Context(), &sdk.CallToolParams{Name: tool, Arguments: args})
	require.NoError(t, err)

	if res.IsError {
		return out, res
	}

	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))

	return out, res
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	cs := connect(t, newTestServer(t))

	res, err := cs.ListTools(t.Context(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}

	assert.ElementsMatch(t, []string{"find_cards", "evaluate_card", "render_card", "list_fonts"}, names)
}

func TestServer_FindCards(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		args      map[string]any
		want      map[string][]int64
		wantError bool
	}{
		"all panels": {
			args: map[string]any{},
			want: map[string][]int64{"Kanji": {1}, "Passes": {}},
		},
		"one panel": {
			args: map[string]any{"panel": "Kanji"},
			want: map[string][]int64{"Kanji": {1}},
		},
		"unknown panel": {
			args:      map[string]any{"panel": "Nope"},
			wantError: true,
		},
		"where keeps": {
			args: map[string]any{"panel": "Kanji", "where": `"jp" in card.tags`},
			want: map[string][]int64{"Kanji": {1}},
		},
		"where excludes": {
			args: map[string]any{"panel": "Kanji", "where": `card.deck == "Spanish"`},
			want: map[string][]int64{"Kanji": {}},
		},
		"invalid where": {
			args:      map[string]any{"where": `card.deck`},
			wantError: true,
		},
	}

	cs := connect(t, newTestServer(t))

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, res := callTool[mcp.FindCardsResult](t, cs, "find_cards", tc.args)
			if tc.wantError {
				assert.True(t, res.IsError)
				return
			}

			require.False(t, res.IsError)

			got := map[string][]int64{}
			for _, p := range out.Panels {
				ids := []int64{}
				for _, m := range p.Matches {
					ids = append(ids, m.ID)
				}

				assert.Equal(t, len(ids), p.Count)
				got[p.Panel] = ids
			}

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestServer_EvaluateCard(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		args      map[string]any
		want      hook.Decision
		wantError bool
	}{
		"review": {
			args: map[string]any{"cardId": 1},
			want: hook.Decision{Panel: "Kanji"},
		},
		"previewer skips panel": {
			args: map[string]any{"cardId": 1, "kind": "previewQuestion"},
			want: hook.Decision{Skipped: "no matching rule set"},
		},
		"card layout": {
			args: map[string]any{"cardId": 2, "kind": "clayoutAnswer"},
			want: hook.Decision{Skipped: "card layout"},
		},
		"unknown kind": {
			args:      map[string]any{"cardId": 1, "kind": "editor"},
			wantError: true,
		},
		"unknown card": {
			args:      map[string]any{"cardId": 99},
			wantError: true,
		},
	}

	cs := connect(t, newTestServer(t))

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, res := callTool[mcp.EvaluateCardResult](t, cs, "evaluate_card", tc.args)
			if tc.wantError {
				assert.True(t, res.IsError)
				return
			}

			require.False(t, res.IsError)
			assert.Equal(t, tc.want, out.Decision)
			require.Len(t, out.Panels, 2)
			assert.Equal(t, "Kanji", out.Panels[0].Panel)
			assert.Equal(t, []finder.Result{{Predicate: "Deck Name", Matched: tc.args["cardId"] == 1}},
				out.Panels[0].Explanation.Results)
		})
	}
}

func TestServer_RenderCard(t *testing.T) {
	t.Parallel()

	cs := connect(t, newTestServer(t))

	out, res := callTool[mcp.RenderCardResult](t, cs, "render_card", map[string]any{
		"cardId": 1,
		"text":   "Japanese",
		"seed":   7,
	})
	require.False(t, res.IsError)
	assert.True(t, out.Changed)
	assert.Contains(t, out.Text, `var JapaneseChosenFont = "FontX";`)

	out, res = callTool[mcp.RenderCardResult](t, cs, "render_card", map[string]any{
		"cardId": 2,
		"text":   "Japanese",
	})
	require.False(t, res.IsError)
	assert.False(t, out.Changed)
	assert.Equal(t, "Japanese", out.Text)
}

func TestServer_ListFonts(t *testing.T) {
	t.Parallel()

	cs := connect(t, newTestServer(t))

	out, res := callTool[mcp.ListFontsResult](t, cs, "list_fonts", map[string]any{})
	require.False(t, res.IsError)
	assert.Equal(t, "Fallback", out.Default)
	assert.Equal(t, []mcp.WritingSystemFonts{
		{WritingSystem: "Japanese", Fonts: []string{"FontX"}},
		{WritingSystem: "Latin", Fonts: []string{}},
	}, out.WritingSystems)

	_, res = callTool[mcp.ListFontsResult](t, cs, "list_fonts", map[string]any{"writingSystem": "Klingon"})
	assert.True(t, res.IsError)
}

func TestServer_Handler(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newTestServer(t).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/healthz") //nolint:noctx // Test request.
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx := t.Context()
	client := sdk.NewClient(&sdk.Implementation{Name: "http-client", Version: "v0.0.1"}, nil)

	cs, err := client.Connect(ctx, &sdk.StreamableClientTransport{Endpoint: srv.URL + mcp.Endpoint}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	out, res := callTool[mcp.FindCardsResult](t, cs, "find_cards", map[string]any{"panel": "Kanji"})
	require.False(t, res.IsError)
	require.Len(t, out.Panels, 1)
	assert.Equal(t, 1, out.Panels[0].Count)
}
