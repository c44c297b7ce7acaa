// Package editor implements the interactive settings panel.
//
// An [Editor] loads one panel's rule set and the enabled fonts per writing
// system into [Settings], binds them to a huh form, and persists both with a
// single [store.Tree.Commit] when the form is submitted.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/macropower/cardfont/pkg/finder"
	"github.com/macropower/cardfont/pkg/fonts"
	"github.com/macropower/cardfont/pkg/store"
	"github.com/macropower/cardfont/pkg/theme"
)

var (
	// ErrNotInteractive is returned when the form cannot take over a terminal.
	ErrNotInteractive = errors.New("not an interactive terminal")
	// ErrCanceled is returned when the user aborts the form.
	ErrCanceled = errors.New("settings not saved")
	// ErrNoPanels is returned when there is no panel to edit.
	ErrNoPanels = errors.New("no panels configured")
)

// Editor edits the rule sets stored under a panels branch and the font
// choices stored under a languages branch.
type Editor struct {
	panels     *store.Branch
	languages  *store.Branch
	catalog    fonts.Catalog
	theme      *theme.Theme
	input      io.Reader
	output     io.Writer
	systems    []string
	accessible bool
}

// Option configures an [Editor].
type Option func(*Editor)

// WithTheme sets the form theme.
func WithTheme(t *theme.Theme) Option {
	return func(e *Editor) {
		e.theme = t
	}
}

// WithWritingSystems limits the writing systems offered in the font section.
func WithWritingSystems(names ...string) Option {
	return func(e *Editor) {
		e.systems = names
	}
}

// WithIO runs the form on r and w instead of the process's terminal. The
// form is then rendered in accessible mode, one prompt per line.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(e *Editor) {
		e.input = r
		e.output = w
		e.accessible = true
	}
}

// New creates an [Editor]. Font families are listed from catalog.
func New(panels, languages *store.Branch, catalog fonts.Catalog, opts ...Option) *Editor {
	e := &Editor{
		panels:    panels,
		languages: languages,
		catalog:   catalog,
		theme:     theme.Default,
		systems:   fonts.Names(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// LanguageFonts is the font section of one writing system.
type LanguageFonts struct {
	WritingSystem string
	// Families lists the installed families that can be chosen.
	Families []string
	// Enabled is the chosen subset of Families.
	Enabled []string
}

// Settings holds the values edited by the form.
type Settings struct {
	Panel     *finder.RuleSet
	Languages []LanguageFonts
	// stored is the languages map as loaded, so families that are no longer
	// installed keep their recorded state.
	stored fonts.LanguageFontMap
}

// Load reads the named panel and the enabled fonts of each writing system.
// Writing systems with no installed families are left out.
func (e *Editor) Load(ctx context.Context, panel string) (*Settings, error) {
	rs, err := finder.Load(finder.Panel(e.panels, panel))
	if err != nil {
		return nil, fmt.Errorf("panel %q: %w", panel, err)
	}

	stored := fonts.LanguageFontMap{}

	err = e.languages.Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}

	s := &Settings{Panel: rs, stored: stored}

	for _, ws := range e.systems {
		families, err := e.catalog.Families(ctx, ws)
		if err != nil {
			return nil, fmt.Errorf("list %s families: %w", ws, err)
		}

		if len(families) == 0 {
			continue
		}

		s.Languages = append(s.Languages, LanguageFonts{
			WritingSystem: ws,
			Families:      families,
			Enabled:       stored.Filter(ws, families),
		})
	}

	return s, nil
}

// LanguageFontMap returns the languages map that [Editor.Save] stores: the
// loaded map with each listed family switched on or off.
func (s *Settings) LanguageFontMap() fonts.LanguageFontMap {
	out := fonts.LanguageFontMap{}
	for ws, families := range s.stored {
		for family, on := range families {
			out.Set(ws, family, on)
		}
	}

	for _, lf := range s.Languages {
		for _, family := range lf.Families {
			out.Set(lf.WritingSystem, family, slices.Contains(lf.Enabled, family))
		}
	}

	return out
}

// Save validates the panel and persists it together with the font choices
// in one commit.
func (e *Editor) Save(s *Settings) error {
	panel, err := finder.Change(finder.Panel(e.panels, s.Panel.Name), s.Panel)
	if err != nil {
		return fmt.Errorf("panel %q: %w", s.Panel.Name, err)
	}

	lm := s.LanguageFontMap()

	pairs := make([]store.Pair, 0, len(s.Languages))
	for _, lf := range s.Languages {
		pairs = append(pairs, store.Set(lf.WritingSystem, lm[lf.WritingSystem]))
	}

	err = e.panels.Tree().Commit(panel, e.languages.Assign(pairs...))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}

// Run loads the named panel, shows the settings form, and saves on submit.
// When panel is empty and several panels are stored, the user picks one
// first.
func (e *Editor) Run(ctx context.Context, panel string) error {
	if !e.accessible && !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNotInteractive
	}

	if panel == "" {
		var err error

		panel, err = e.pickPanel(ctx)
		if err != nil {
			return err
		}
	}

	s, err := e.Load(ctx, panel)
	if err != nil {
		return err
	}

	err = e.run(ctx, e.Form(s))
	if err != nil {
		return err
	}

	return e.Save(s)
}

func (e *Editor) pickPanel(ctx context.Context) (string, error) {
	names, err := e.panels.StoredKeys()
	if err != nil {
		return "", fmt.Errorf("list panels: %w", err)
	}

	switch len(names) {
	case 0:
		return "", ErrNoPanels
	case 1:
		return names[0], nil
	}

	var panel string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Panel").
				Options(huh.NewOptions(names...)...).
				Value(&panel),
		),
	)

	err = e.run(ctx, form)
	if err != nil {
		return "", err
	}

	return panel, nil
}

func (e *Editor) run(ctx context.Context, form *huh.Form) error {
	form = form.
		WithShowHelp(true).
		WithTheme(theme.HuhTheme(e.theme)).
		WithAccessible(e.accessible)

	if e.input != nil {
		form = form.WithInput(e.input)
	}
	if e.output != nil {
		form = form.WithOutput(e.output)
	}

	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCanceled
	}
	if err != nil {
		return fmt.Errorf("run settings form: %w", err)
	}

	return nil
}
