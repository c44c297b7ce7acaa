package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/macropower/cardfont/api/v1beta1/configs"
	"github.com/macropower/cardfont/pkg/anki"
	"github.com/macropower/cardfont/pkg/config"
	"github.com/macropower/cardfont/pkg/fonts"
	"github.com/macropower/cardfont/pkg/store"
	"github.com/macropower/cardfont/pkg/theme"
	"github.com/macropower/cardfont/pkg/transform"
)

// Top-level keys of the configuration document that the store addresses.
const (
	panelsKey    = "panels"
	languagesKey = "languages"
)

// configPath returns the --config path, or the default location.
func (ra *RootArgs) configPath() string {
	if ra.ConfigPath != "" {
		return ra.ConfigPath
	}

	return configs.GetPath()
}

// loadConfig writes the default configuration if none exists, then loads
// and validates it. The returned theme is read from the document.
func (ra *RootArgs) loadConfig() (*configs.Config, *theme.Theme, error) {
	path := ra.configPath()

	err := configs.WriteDefault(path, false)
	if err != nil {
		slog.Warn("could not write default config", slog.String("path", path), slog.Any("err", err))
	}

	cl, err := config.NewLoaderFromFile(path, configs.New, configs.DefaultValidator, config.WithThemeFromData())
	if err != nil {
		return nil, theme.Default, fmt.Errorf("read config: %w", err)
	}

	err = cl.Validate()
	if err != nil {
		return nil, cl.GetTheme(), fmt.Errorf("invalid config %q: %w", path, err)
	}

	cfg, err := cl.Load()
	if err != nil {
		return nil, cl.GetTheme(), fmt.Errorf("invalid config %q: %w", path, err)
	}

	slog.Debug("loaded config", slog.String("path", path), slog.Any("panels", cfg.PanelNames()))

	return cfg, cl.GetTheme(), nil
}

// openStore returns the configuration file as a [store.Tree] with its panels
// and languages branches.
func (ra *RootArgs) openStore() (tree *store.Tree, panels, languages *store.Branch) {
	tree = store.New(store.NewFile(ra.configPath()))
	root := tree.Root()

	return tree, root.AddBranch(panelsKey, nil), root.AddBranch(languagesKey, nil)
}

// fontSource builds the [transform.FontSource] for cfg. Every known writing
// system is considered. Families missing from languages count as enabled.
func fontSource(cfg *configs.Config) (*transform.Fonts, error) {
	cat, err := catalog(cfg)
	if err != nil {
		return nil, err
	}

	return &transform.Fonts{
		Catalog: cat,
		Enabled: cfg.Languages,
	}, nil
}

// catalog returns cfg's font catalog.
func catalog(cfg *configs.Config) (fonts.Catalog, error) {
	cat, err := cfg.Fonts.NewCatalog(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("font catalog: %w", err)
	}

	return cat, nil
}

// openCollection opens an Anki collection file read-only.
func openCollection(ctx context.Context, path string) (*anki.Collection, error) {
	col, err := anki.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open collection %q: %w", path, err)
	}

	return col, nil
}

func closeCollection(col *anki.Collection) {
	err := col.Close()
	if err != nil {
		slog.Warn("close collection", slog.Any("err", err))
	}
}
