package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/cardfont/pkg/expr"
	"github.com/macropower/cardfont/pkg/finder"
	"github.com/macropower/cardfont/pkg/hook"
	"github.com/macropower/cardfont/pkg/transform"
)

// ErrUnknownPanel is returned when a tool names a panel that is not stored.
var ErrUnknownPanel = errors.New("unknown panel")

// FindCardsParams defines parameters for the find_cards tool.
type FindCardsParams struct {
	Panel string `json:"panel,omitempty" jsonschema:"the panel to search with; every panel when empty"`
	Where string `json:"where,omitempty" jsonschema:"a CEL expression over card (id, deck, noteType, sortField, sortValue, tags, reps) that matches must also satisfy"`
	Limit int    `json:"limit,omitempty" jsonschema:"the maximum number of cards listed per panel (default 50)"`
}

// PanelMatches lists the cards one panel selects.
type PanelMatches struct {
	Panel   string         `json:"panel"`
	Matches []finder.Match `json:"matches"`
	Count   int            `json:"count"`
}

// FindCardsResult contains the result of the find_cards tool.
type FindCardsResult struct {
	Panels []PanelMatches `json:"panels"`
}

// EvaluateCardParams defines parameters for the evaluate_card tool.
type EvaluateCardParams struct {
	Kind   string `json:"kind,omitempty" jsonschema:"the render kind, such as reviewQuestion or previewAnswer (default reviewQuestion)"`
	CardID int64  `json:"cardId" jsonschema:"the id of the card"`
}

// PanelExplanation is the evaluation of one panel.
type PanelExplanation struct {
	Panel       string             `json:"panel"`
	Explanation finder.Explanation `json:"explanation"`
}

// EvaluateCardResult contains the result of the evaluate_card tool.
type EvaluateCardResult struct {
	Decision hook.Decision      `json:"decision"`
	Panels   []PanelExplanation `json:"panels"`
}

// RenderCardParams defines parameters for the render_card tool.
type RenderCardParams struct {
	Seed   *uint64 `json:"seed,omitempty" jsonschema:"seed for font selection, for repeatable output"`
	Kind   string  `json:"kind,omitempty" jsonschema:"the render kind (default reviewQuestion)"`
	Text   string  `json:"text" jsonschema:"the rendered question or answer markup"`
	CardID int64   `json:"cardId" jsonschema:"the id of the card"`
}

// RenderCardResult contains the result of the render_card tool.
type RenderCardResult struct {
	Text    string `json:"text"`
	Changed bool   `json:"changed"`
}

// ListFontsParams defines parameters for the list_fonts tool.
type ListFontsParams struct {
	WritingSystem string `json:"writingSystem,omitempty" jsonschema:"the writing system, such as Japanese; every writing system when empty"`
}

// WritingSystemFonts lists the fonts enabled for a writing system.
type WritingSystemFonts struct {
	WritingSystem string   `json:"writingSystem"`
	Fonts         []string `json:"fonts"`
}

// ListFontsResult contains the result of the list_fonts tool.
type ListFontsResult struct {
	Default        string               `json:"default"`
	WritingSystems []WritingSystemFonts `json:"writingSystems"`
}

func (s *Server) ruleSets(panel string) ([]*finder.RuleSet, error) {
	sets, err := finder.LoadAll(s.panels)
	if err != nil {
		err = fmt.Errorf("load panels: %w", err)
	}

	if panel == "" {
		if err != nil {
			return nil, err
		}

		return sets, nil
	}

	// A broken panel only matters when it is the one asked for.
	i := slices.IndexFunc(sets, func(rs *finder.RuleSet) bool { return rs.Name == panel })
	if i < 0 {
		if err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, panel)
	}

	return sets[i : i+1], nil
}

func parseKind(s string) (hook.Kind, error) {
	if s == "" {
		return hook.KindReviewQuestion, nil
	}

	k, err := hook.ParseKind(s)
	if err != nil {
		return "", fmt.Errorf("parse kind: %w", err)
	}

	return k, nil
}

func (s *Server) handleFindCards(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	params FindCardsParams,
) (*mcp.CallToolResult, FindCardsResult, error) {
	result := FindCardsResult{Panels: []PanelMatches{}}

	sets, err := s.ruleSets(params.Panel)
	if err != nil {
		return nil, result, err
	}

	var where *expr.Filter
	if params.Where != "" {
		where, err = expr.NewFilter(params.Where)
		if err != nil {
			return nil, result, fmt.Errorf("where: %w", err)
		}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	for _, rs := range sets {
		matches, err := finder.Preview(ctx, s.cards, rs)
		if err != nil {
			return nil, result, fmt.Errorf("panel %q: %w", rs.Name, err)
		}

		matches, err = where.Apply(matches)
		if err != nil {
			return nil, result, fmt.Errorf("panel %q: %w", rs.Name, err)
		}

		result.Panels = append(result.Panels, PanelMatches{
			Panel:   rs.Name,
			Count:   len(matches),
			Matches: matches[:min(limit, len(matches))],
		})
	}

	return nil, result, nil
}

func (s *Server) handleEvaluateCard(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	params EvaluateCardParams,
) (*mcp.CallToolResult, EvaluateCardResult, error) {
	result := EvaluateCardResult{Panels: []PanelExplanation{}}

	kind, err := parseKind(params.Kind)
	if err != nil {
		return nil, result, err
	}

	c, err := s.cards.Card(ctx, params.CardID)
	if err != nil {
		return nil, result, fmt.Errorf("get card %d: %w", params.CardID, err)
	}

	sets, err := s.ruleSets("")
	if err != nil {
		return nil, result, err
	}

	for _, rs := range sets {
		ex, err := rs.Explain(c)
		if err != nil {
			return nil, result, fmt.Errorf("panel %q: %w", rs.Name, err)
		}

		result.Panels = append(result.Panels, PanelExplanation{Panel: rs.Name, Explanation: ex})
	}

	session, err := s.session(nil)
	if err != nil {
		return nil, result, err
	}

	result.Decision, err = session.Evaluate(ctx, c, kind)
	if err != nil {
		return nil, result, fmt.Errorf("evaluate: %w", err)
	}

	return nil, result, nil
}

func (s *Server) handleRenderCard(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	params RenderCardParams,
) (*mcp.CallToolResult, RenderCardResult, error) {
	var result RenderCardResult

	kind, err := parseKind(params.Kind)
	if err != nil {
		return nil, result, err
	}

	c, err := s.cards.Card(ctx, params.CardID)
	if err != nil {
		return nil, result, fmt.Errorf("get card %d: %w", params.CardID, err)
	}

	var opts []transform.Option
	if params.Seed != nil {
		opts = append(opts, transform.WithSeed(*params.Seed))
	}

	session, err := s.session(opts)
	if err != nil {
		return nil, result, err
	}

	out, err := session.Render(ctx, params.Text, c, kind)
	if err != nil {
		return nil, result, fmt.Errorf("render: %w", err)
	}

	result.Text = truncateString(out, maxTextLen)
	result.Changed = out != params.Text

	return nil, result, nil
}

func (s *Server) handleListFonts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	params ListFontsParams,
) (*mcp.CallToolResult, ListFontsResult, error) {
	result := ListFontsResult{WritingSystems: []WritingSystemFonts{}}

	var err error

	result.Default, err = s.fonts.DefaultFamily(ctx)
	if err != nil {
		return nil, result, fmt.Errorf("default family: %w", err)
	}

	systems := s.fonts.WritingSystems()
	if params.WritingSystem != "" {
		systems = []string{params.WritingSystem}
	}

	for _, ws := range systems {
		families, err := s.fonts.EnabledFonts(ctx, ws)
		if err != nil {
			return nil, result, fmt.Errorf("%s: %w", ws, err)
		}

		if families == nil {
			families = []string{}
		}

		result.WritingSystems = append(result.WritingSystems, WritingSystemFonts{
			WritingSystem: ws,
			Fonts:         families,
		})
	}

	return nil, result, nil
}

func (s *Server) session(opts []transform.Option) (*hook.Session, error) {
	session, err := hook.NewSession(
		hook.WithPanels(s.panels),
		hook.WithTransform(transform.New(s.fonts, opts...)),
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}
