package fonts

import (
	"context"
	"fmt"
)

// LanguageFontMap records, per writing system, whether each font family is
// enabled. Families without an entry are enabled.
type LanguageFontMap map[string]map[string]bool

// IsEnabled reports whether family is enabled for the writing system.
func (m LanguageFontMap) IsEnabled(ws, family string) bool {
	on, ok := m[ws][family]

	return !ok || on
}

// Set records whether family is enabled for the writing system.
func (m LanguageFontMap) Set(ws, family string, enabled bool) {
	if m[ws] == nil {
		m[ws] = map[string]bool{}
	}

	m[ws][family] = enabled
}

// SetAll enables or disables every given family.
func (m LanguageFontMap) SetAll(ws string, families []string, enabled bool) {
	for _, f := range families {
		m.Set(ws, f, enabled)
	}
}

// Filter returns the enabled subset of families, preserving order.
func (m LanguageFontMap) Filter(ws string, families []string) []string {
	out := make([]string, 0, len(families))
	for _, f := range families {
		if m.IsEnabled(ws, f) {
			out = append(out, f)
		}
	}

	return out
}

// Enabled lists the catalog's families for the writing system and returns
// the enabled ones.
func (m LanguageFontMap) Enabled(ctx context.Context, cat Catalog, ws string) ([]string, error) {
	families, err := cat.Families(ctx, ws)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}

	return m.Filter(ws, families), nil
}
