package transform

import (
	"context"

	"github.com/macropower/cardfont/pkg/fonts"
)

// FontSource provides the fonts a [Transformer] chooses from.
type FontSource interface {
	// WritingSystems returns the writing system names to consider.
	WritingSystems() []string
	// EnabledFonts returns the enabled families for a writing system.
	EnabledFonts(ctx context.Context, ws string) ([]string, error)
	// DefaultFamily is used when no family is enabled.
	DefaultFamily(ctx context.Context) (string, error)
}

// Fonts is a [FontSource] backed by a [fonts.Catalog] and the user's
// [fonts.LanguageFontMap].
type Fonts struct {
	Catalog fonts.Catalog
	Enabled fonts.LanguageFontMap
	// Systems limits the writing systems considered. When empty, all of
	// [fonts.WritingSystems] are used.
	Systems []string
}

func (f *Fonts) WritingSystems() []string {
	if len(f.Systems) > 0 {
		return f.Systems
	}

	return fonts.Names()
}

func (f *Fonts) EnabledFonts(ctx context.Context, ws string) ([]string, error) {
	return f.Enabled.Enabled(ctx, f.Catalog, ws)
}

func (f *Fonts) DefaultFamily(ctx context.Context) (string, error) {
	return f.Catalog.DefaultFamily(ctx)
}
