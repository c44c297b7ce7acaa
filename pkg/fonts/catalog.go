package fonts

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultFamily is the generic family used when no font is configured or
// enabled.
const DefaultFamily = "sans-serif"

// Catalog lists installed font families.
type Catalog interface {
	// Families returns the sorted families supporting the named writing
	// system.
	Families(ctx context.Context, ws string) ([]string, error)
	// DefaultFamily returns the system's general-purpose family.
	DefaultFamily(ctx context.Context) (string, error)
}

// CatalogKind selects a [Catalog] implementation.
type CatalogKind string

const (
	CatalogFontconfig CatalogKind = "fontconfig"
	CatalogStatic     CatalogKind = "static"
)

// Config configures font discovery.
type Config struct {
	// Static lists families per writing system for the static catalog.
	Static map[string][]string `json:"static,omitempty" jsonschema:"title=Static Families"`
	// DefaultFamily is the fallback family when none is enabled.
	DefaultFamily string      `json:"defaultFamily,omitempty" jsonschema:"title=Default Family"`
	Catalog       CatalogKind `json:"catalog,omitempty" jsonschema:"title=Catalog,enum=fontconfig,enum=static,default=fontconfig"`
}

// NewConfig creates a [Config] with default values.
func NewConfig() *Config {
	c := &Config{}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults sets default values for unset fields.
func (c *Config) EnsureDefaults() {
	if c.Catalog == "" {
		c.Catalog = CatalogFontconfig
	}
	if c.DefaultFamily == "" {
		c.DefaultFamily = DefaultFamily
	}
	if c.Static == nil {
		c.Static = map[string][]string{}
	}
}

// NewCatalog creates the [Catalog] selected by c. The environment is passed
// to any commands the catalog runs.
func (c *Config) NewCatalog(env []string) (Catalog, error) {
	switch c.Catalog {
	case CatalogFontconfig, "":
		return NewFontconfig(c.DefaultFamily, env), nil
	case CatalogStatic:
		return NewStatic(c.Static, c.DefaultFamily), nil
	}

	return nil, fmt.Errorf("unknown catalog %q", c.Catalog)
}

// Static is a [Catalog] backed by a fixed map of writing system names to
// families.
type Static struct {
	families map[string][]string
	fallback string
}

// NewStatic creates a [Static] catalog.
func NewStatic(families map[string][]string, fallback string) *Static {
	if fallback == "" {
		fallback = DefaultFamily
	}

	return &Static{families: families, fallback: fallback}
}

func (s *Static) Families(_ context.Context, ws string) ([]string, error) {
	if _, err := Lookup(ws); err != nil {
		return nil, err
	}

	return uniqueSorted(s.families[ws]), nil
}

func (s *Static) DefaultFamily(_ context.Context) (string, error) {
	return s.fallback, nil
}

// Filter returns the families that fuzzy-match pattern, best match first.
// An empty pattern returns families unchanged.
func Filter(families []string, pattern string) []string {
	if pattern == "" {
		return families
	}

	matches := fuzzy.Find(pattern, families)
	out := make([]string, 0, len(matches))

	for _, m := range matches {
		out = append(out, m.Str)
	}

	return out
}

func uniqueSorted(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}

	slices.Sort(out)

	return slices.Compact(out)
}
