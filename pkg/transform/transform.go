package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/macropower/cardfont/pkg/fonts"
	"github.com/macropower/cardfont/pkg/log"
)

// StyleSheetVar is the script variable holding the injected stylesheet.
const StyleSheetVar = "randomFontStyleSheet"

// Choice is the font chosen for one writing system.
type Choice struct {
	WritingSystem string `json:"writingSystem"`
	Token         string `json:"token"`
	Font          string `json:"font"`
}

// Transformer injects fonts into card markup.
type Transformer struct {
	fonts  FontSource
	rand   *rand.Rand
	policy *bluemonday.Policy
	mu     sync.Mutex
}

// Option configures a [Transformer].
type Option func(*Transformer)

// WithRand sets the random source used to choose fonts.
func WithRand(r *rand.Rand) Option {
	return func(t *Transformer) {
		t.rand = r
	}
}

// WithSeed seeds the random source used to choose fonts.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed)))
}

// New creates a [Transformer] choosing from src.
func New(src FontSource, opts ...Option) *Transformer {
	t := &Transformer{
		fonts:  src,
		policy: bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.rand == nil {
		t.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Font choice is not security sensitive.
	}

	return t
}

// present returns the writing systems whose token appears in text, sorted by
// name.
func (t *Transformer) present(text string) []string {
	var out []string
	for _, ws := range t.fonts.WritingSystems() {
		tok := fonts.Token(ws)
		if tok != "" && strings.Contains(text, tok) {
			out = append(out, ws)
		}
	}

	slices.Sort(out)

	return out
}

// Choose picks a font for every writing system named in text.
func (t *Transformer) Choose(ctx context.Context, text string) ([]Choice, error) {
	var choices []Choice

	for _, ws := range t.present(text) {
		font, err := t.choose(ctx, ws)
		if err != nil {
			return nil, err
		}

		choices = append(choices, Choice{
			WritingSystem: ws,
			Token:         fonts.Token(ws),
			Font:          font,
		})
	}

	return choices, nil
}

func (t *Transformer) choose(ctx context.Context, ws string) (string, error) {
	enabled, err := t.fonts.EnabledFonts(ctx, ws)
	if err != nil {
		return "", fmt.Errorf("%s fonts: %w", ws, err)
	}

	enabled = slices.DeleteFunc(slices.Clone(enabled), func(f string) bool {
		return t.sanitize(f) == ""
	})

	if len(enabled) == 0 {
		def, err := t.fonts.DefaultFamily(ctx)
		if err != nil {
			return "", fmt.Errorf("default family: %w", err)
		}

		log.WithContext(ctx).DebugContext(ctx, "no enabled fonts, using default",
			slog.String("writing_system", ws),
			slog.String("font", def),
		)

		return t.sanitize(def), nil
	}

	t.mu.Lock()
	i := t.rand.IntN(len(enabled))
	t.mu.Unlock()

	return t.sanitize(enabled[i]), nil
}

// Question appends a font choice, tooltip and stylesheet for each writing
// system named in text.
func (t *Transformer) Question(ctx context.Context, text string) (string, error) {
	choices, err := t.Choose(ctx, text)
	if err != nil {
		return "", err
	}

	return RenderQuestion(text, choices), nil
}

// Answer re-attaches the tooltips and stylesheet added by [Transformer.Question].
func (t *Transformer) Answer(_ context.Context, text string) (string, error) {
	return RenderAnswer(text, t.present(text)), nil
}

// RenderQuestion appends the markup for choices to text.
func RenderQuestion(text string, choices []Choice) string {
	sb := &strings.Builder{}
	sb.WriteString(text)

	rules := &strings.Builder{}

	for _, c := range choices {
		fmt.Fprintf(sb, "\n"+`<span id="%[1]sFontName" class="tippyhover" style="display:none;">`+
			`<ruby><rb>%[1]sFont</rb><rt>%[2]s</rt></ruby></span>`+"\n"+
			"<script>\n"+
			"var %[1]sChosenFont = %[3]s;\n"+
			`var %[1]sTooltip = document.getElementById("%[1]sFontName");`+"\n"+
			"</script>",
			c.Token, html.EscapeString(c.Font), jsString(c.Font),
		)

		fmt.Fprintf(rules, ".%s {font-family: %s;}", c.Token, cssString(c.Font))
	}

	fmt.Fprintf(sb, "\n<script>\n"+
		`var qa = document.getElementById("qa");`+"\n"+
		`var %[1]s = document.createElement("style");`+"\n"+
		"%[1]s.innerText = %[2]s;\n"+
		"qa.appendChild(%[1]s);\n"+
		"</script>",
		StyleSheetVar, jsString(rules.String()),
	)

	return sb.String()
}

// RenderAnswer appends scripts re-attaching the tooltip of each writing
// system and the stylesheet to text.
func RenderAnswer(text string, writingSystems []string) string {
	sb := &strings.Builder{}
	sb.WriteString(text)

	for _, ws := range writingSystems {
		fmt.Fprintf(sb, "<script>qa.append(%sTooltip);</script>", fonts.Token(ws))
	}

	fmt.Fprintf(sb, "<script>qa.appendChild(%s);</script>", StyleSheetVar)

	return sb.String()
}

// sanitize removes markup from a font name.
func (t *Transformer) sanitize(font string) string {
	return strings.TrimSpace(html.UnescapeString(t.policy.Sanitize(font)))
}

// jsString returns s as a JavaScript string literal that is safe inside a
// script element.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}

	return string(b)
}

var cssEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `, "<", `\3c `, ">", `\3e `)

// cssString returns s as a quoted CSS string.
func cssString(s string) string {
	return `"` + cssEscaper.Replace(s) + `"`
}
