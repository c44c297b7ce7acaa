package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/cardfont/api/v1beta1/configs"
	"github.com/macropower/cardfont/pkg/fonts"
	"github.com/macropower/cardfont/pkg/store"
	"github.com/macropower/cardfont/pkg/theme"
)

type FontsListArgs struct {
	*RootArgs

	Filter string
}

func NewFontsCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List and toggle the fonts of each writing system",
	}

	la := &FontsListArgs{RootArgs: ra}

	list := &cobra.Command{
		Use:               "list [writing-system...]",
		Short:             "List installed families and whether each is enabled",
		ValidArgsFunction: writingSystemCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFontsList(cmd, la, args)
		},
	}
	list.Flags().StringVarP(&la.Filter, "filter", "f", "", "Fuzzy filter applied to family names")

	cmd.AddCommand(
		list,
		newFontsToggleCmd(ra, "enable", true),
		newFontsToggleCmd(ra, "disable", false),
	)

	return cmd
}

func newFontsToggleCmd(ra *RootArgs, verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:               verb + " <writing-system> <family...>",
		Short:             fmt.Sprintf("%s font families for a writing system", verb),
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: firstArg(writingSystemCompletion),
		RunE: func(_ *cobra.Command, args []string) error {
			return toggleFonts(ra, args[0], args[1:], enabled)
		},
	}
}

func runFontsList(cmd *cobra.Command, la *FontsListArgs, systems []string) error {
	cfg, t, err := la.loadConfig()
	if err != nil {
		return err
	}

	cat, err := catalog(cfg)
	if err != nil {
		return err
	}

	if len(systems) == 0 {
		systems = fonts.Names()
	}

	for _, name := range systems {
		ws, err := fonts.Lookup(name)
		if err != nil {
			return fmt.Errorf("invalid argument: %w", err)
		}

		families, err := cat.Families(cmd.Context(), ws.Name)
		if err != nil {
			return fmt.Errorf("%s: %w", ws.Name, err)
		}

		families = fonts.Filter(families, la.Filter)
		if len(families) == 0 {
			continue
		}

		err = writeFamilies(cmd.OutOrStdout(), t, cfg, ws, families)
		if err != nil {
			return err
		}
	}

	return nil
}

func writeFamilies(w io.Writer, t *theme.Theme, cfg *configs.Config, ws fonts.WritingSystem, families []string) error {
	_, err := fmt.Fprintln(w, t.TitleStyle.Render(fmt.Sprintf("%s (%s)", ws.Name, ws.Language())))
	if err != nil {
		return fmt.Errorf("write fonts: %w", err)
	}

	for _, family := range families {
		mark := t.NoMatchStyle.Render("✗")
		if cfg.Languages.IsEnabled(ws.Name, family) {
			mark = t.MatchStyle.Render("✓")
		}

		_, err := fmt.Fprintf(w, "  %s %s\n", mark, family)
		if err != nil {
			return fmt.Errorf("write fonts: %w", err)
		}
	}

	return nil
}

// toggleFonts records families as enabled or disabled for the writing system,
// leaving the rest of the languages map unchanged.
func toggleFonts(ra *RootArgs, name string, families []string, enabled bool) error {
	ws, err := fonts.Lookup(name)
	if err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}

	tree, _, languages := ra.openStore()

	lm := fonts.LanguageFontMap{}

	err = languages.Decode(&lm)
	if err != nil {
		return fmt.Errorf("read languages: %w", err)
	}

	lm.SetAll(ws.Name, families, enabled)

	err = tree.Commit(languages.Assign(store.Set(ws.Name, lm[ws.Name])))
	if err != nil {
		return fmt.Errorf("save languages: %w", err)
	}

	slog.Info("updated fonts",
		slog.String("writing_system", ws.Name),
		slog.Any("families", families),
		slog.Bool("enabled", enabled),
	)

	return nil
}

func writingSystemCompletion(_ *cobra.Command, _ []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	return fonts.Names(), cobra.ShellCompDirectiveNoFileComp
}
