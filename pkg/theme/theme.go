// Package theme provides terminal styles derived from chroma styles.
package theme

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	// ErrInvalidName is returned when registering a style without a name.
	ErrInvalidName = errors.New("invalid theme name")
	// ErrRegisterStyles is returned when chroma rejects style entries.
	ErrRegisterStyles = errors.New("register styles")
)

var Default = New("github")

type Theme struct {
	ChromaStyle *chroma.Style

	ErrorStyle          lipgloss.Style
	GenericTextStyle    lipgloss.Style
	LineNumberStyle     lipgloss.Style
	LogoStyle           lipgloss.Style
	MatchStyle          lipgloss.Style
	NoMatchStyle        lipgloss.Style
	SelectedStyle       lipgloss.Style
	SelectedSubtleStyle lipgloss.Style
	SubtleStyle         lipgloss.Style
	TitleStyle          lipgloss.Style
}

// New creates a [Theme] from a chroma style name. "auto" (or "") picks a light
// or dark style based on the terminal background.
func New(name string) *Theme {
	cs := newChromaStyle(name)

	var (
		genericStyle = lipgloss.NewStyle().
				Foreground(cs.fg(chroma.Background))

		selectedStyle = lipgloss.NewStyle().
				Foreground(cs.fg(chroma.NameTag))

		subtleStyle = lipgloss.NewStyle().
				Foreground(cs.fg(chroma.Comment))
	)

	return &Theme{
		ChromaStyle:      cs.style,
		GenericTextStyle: genericStyle,
		ErrorStyle: lipgloss.NewStyle().
			Foreground(cs.fg(chroma.GenericDeleted)).
			Bold(true),
		LineNumberStyle: subtleStyle,
		LogoStyle: lipgloss.NewStyle().
			Foreground(cs.bg(chroma.Background)).
			Background(cs.fg(chroma.NameTag)).
			Bold(true),
		MatchStyle: lipgloss.NewStyle().
			Foreground(cs.fg(chroma.GenericInserted)),
		NoMatchStyle: lipgloss.NewStyle().
			Foreground(cs.fg(chroma.GenericDeleted)),
		SelectedStyle: selectedStyle,
		SelectedSubtleStyle: lipgloss.NewStyle().
			Foreground(cs.fgFactor(chroma.NameTag, 0.3)),
		SubtleStyle: subtleStyle,
		TitleStyle:  selectedStyle.Bold(true),
	}
}

// Register adds a custom chroma style that [New] can refer to by name.
func Register(name string, entries chroma.StyleEntries) error {
	if name == "" {
		return ErrInvalidName
	}

	customTheme, err := chroma.NewStyle(name, entries)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegisterStyles, err)
	}

	styles.Register(customTheme)

	return nil
}

// Highlight writes source to w with syntax highlighting for the given chroma
// lexer, using the colour profile of the current terminal.
func (t *Theme) Highlight(w io.Writer, source, lexer string) error {
	return t.HighlightWithProfile(w, source, lexer, lipgloss.ColorProfile())
}

// HighlightWithProfile is [Theme.Highlight] with an explicit colour profile.
func (t *Theme) HighlightWithProfile(w io.Writer, source, lexer string, p termenv.Profile) error {
	l := lexers.Get(lexer)
	if l == nil {
		l = lexers.Fallback
	}

	l = chroma.Coalesce(l)

	it, err := l.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}

	f := formatters.Get(FormatterName(p))
	if f == nil {
		f = formatters.Fallback
	}

	err = f.Format(w, t.ChromaStyle, it)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}

	return nil
}

// FormatterName returns the chroma formatter matching a colour profile.
func FormatterName(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal16"
	default:
		return "noop"
	}
}

type chromaStyle struct {
	style *chroma.Style
}

func newChromaStyle(name string) chromaStyle {
	s := styles.Get(getStyle(name))
	if s == nil {
		s = styles.Fallback
	}

	return chromaStyle{style: s}
}

func (cs chromaStyle) fg(c chroma.TokenType) lipgloss.Color {
	return lipgloss.Color(cs.style.Get(c).Colour.String()) //nolint:misspell // Chroma naming.
}

func (cs chromaStyle) bg(c chroma.TokenType) lipgloss.Color {
	return lipgloss.Color(cs.style.Get(c).Background.String())
}

func (cs chromaStyle) fgFactor(c chroma.TokenType, factor float64) lipgloss.Color {
	sc := cs.style.Get(c).Colour.BrightenOrDarken(factor) //nolint:misspell // Chroma naming.

	return lipgloss.Color(sc.String())
}

func getStyle(style string) string {
	switch style {
	case "dark":
		return "github-dark"
	case "light":
		return "github"
	case "auto", "":
		return getDefaultStyle()
	default:
		return style
	}
}

func getDefaultStyle() string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ""
	}
	if termenv.HasDarkBackground() {
		return "github-dark"
	}

	return "github"
}
