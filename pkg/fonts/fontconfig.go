package fonts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/macropower/cardfont/pkg/execs"
	"github.com/macropower/cardfont/pkg/log"
)

// Fontconfig is a [Catalog] that queries fontconfig with fc-list and
// fc-match.
type Fontconfig struct {
	list    execs.Executor
	match   execs.Executor
	generic string
}

// NewFontconfig creates a [Fontconfig] catalog. The generic family (for
// example "sans-serif") is resolved with fc-match to find the default
// family.
func NewFontconfig(generic string, env []string) *Fontconfig {
	if generic == "" {
		generic = DefaultFamily
	}

	return &Fontconfig{
		list:    execs.NewExecutor(execs.Command{Command: "fc-list"}, env),
		match:   execs.NewExecutor(execs.Command{Command: "fc-match", Args: []string{"--format=%{family[0]}"}}, env),
		generic: generic,
	}
}

func (f *Fontconfig) Families(ctx context.Context, ws string) ([]string, error) {
	w, err := Lookup(ws)
	if err != nil {
		return nil, err
	}

	res, err := f.list.Exec(ctx, ":lang="+w.Lang(), "family")
	if err != nil {
		return nil, fmt.Errorf("list %s fonts: %w", ws, err)
	}

	return ParseFamilies(res.Stdout), nil
}

func (f *Fontconfig) DefaultFamily(ctx context.Context) (string, error) {
	res, err := f.match.Exec(ctx, f.generic)
	if err != nil {
		log.WithContext(ctx).WarnContext(ctx, "could not resolve default family",
			slog.String("family", f.generic),
			slog.Any("err", err),
		)

		return f.generic, nil
	}

	family := strings.TrimSpace(res.Stdout)
	if family == "" {
		return f.generic, nil
	}

	return family, nil
}

// ParseFamilies parses fc-list family output. Each line lists the localized
// names of one family separated by commas; the first name is used.
func ParseFamilies(out string) []string {
	var families []string
	for line := range strings.Lines(out) {
		name, _, _ := strings.Cut(line, ",")
		families = append(families, strings.ReplaceAll(name, `\-`, "-"))
	}

	return uniqueSorted(families)
}
