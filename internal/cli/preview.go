package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	xstrings "github.com/charmbracelet/x/exp/strings"

	"github.com/macropower/cardfont/api/v1beta1/configs"
	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/expr"
	"github.com/macropower/cardfont/pkg/finder"
	"github.com/macropower/cardfont/pkg/log"
	"github.com/macropower/cardfont/pkg/theme"
)

// ErrUnknownPanel is returned when --panel names a panel that is not configured.
var ErrUnknownPanel = errors.New("unknown panel")

type PreviewArgs struct {
	*RootArgs

	Collection string
	Panel      string
	Where      string
	CardID     int64
	Explain    bool
	Copy       bool
	Watch      bool
}

func (pa *PreviewArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&pa.Panel, "panel", "p", "", "Only preview this panel")
	cmd.Flags().StringVar(&pa.Where, "where", "", "CEL expression over card that matches must also satisfy")
	cmd.Flags().Int64Var(&pa.CardID, "card", 0, "Explain a single card, whether or not it matches")
	cmd.Flags().BoolVarP(&pa.Explain, "explain", "e", false, "Show the result of each enabled predicate")
	cmd.Flags().BoolVar(&pa.Copy, "copy", false, "Copy an Anki browser search for the matching cards")
	cmd.Flags().BoolVarP(&pa.Watch, "watch", "w", false, "Preview again whenever the configuration changes")
}

func NewPreviewCmd(ra *RootArgs) *cobra.Command {
	pa := &PreviewArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "preview <collection.anki2>",
		Short: "List the cards each panel selects",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
			return []cobra.Completion{"anki2"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pa.Collection = args[0]

			return runPreview(cmd, pa)
		},
	}

	pa.AddFlags(cmd)
	must(cmd.RegisterFlagCompletionFunc("panel", panelCompletion(ra)))

	return cmd
}

func runPreview(cmd *cobra.Command, pa *PreviewArgs) error {
	ctx := cmd.Context()

	col, err := openCollection(ctx, pa.Collection)
	if err != nil {
		return err
	}
	defer closeCollection(col)

	err = previewOnce(ctx, cmd.OutOrStdout(), col, pa)
	if err != nil || !pa.Watch {
		return err
	}

	return watchConfig(ctx, pa.configPath(), func() {
		err := previewOnce(ctx, cmd.OutOrStdout(), col, pa)
		if err != nil {
			log.WithContext(ctx).ErrorContext(ctx, "preview", slog.Any("err", err))
		}
	})
}

func previewOnce(ctx context.Context, w io.Writer, src card.Source, pa *PreviewArgs) error {
	cfg, t, err := pa.loadConfig()
	if err != nil {
		return err
	}

	sets, err := selectPanels(cfg, pa.Panel)
	if err != nil {
		return err
	}

	if pa.CardID != 0 {
		return explainCard(ctx, w, t, src, sets, pa.CardID)
	}

	var where *expr.Filter
	if pa.Where != "" {
		where, err = expr.NewFilter(pa.Where)
		if err != nil {
			return fmt.Errorf("invalid argument: --where: %w", err)
		}
	}

	var ids []int64

	for _, rs := range sets {
		matches, err := finder.Preview(ctx, src, rs)
		if err != nil {
			return fmt.Errorf("panel %q: %w", rs.Name, err)
		}

		matches, err = where.Apply(matches)
		if err != nil {
			return fmt.Errorf("panel %q: %w", rs.Name, err)
		}

		err = writeMatches(ctx, w, t, src, rs, matches, pa.Explain)
		if err != nil {
			return err
		}

		for _, m := range matches {
			ids = append(ids, m.ID)
		}
	}

	if pa.Copy {
		return copySearch(ids)
	}

	return nil
}

// selectPanels returns the named panel, or every panel sorted by name.
func selectPanels(cfg *configs.Config, name string) ([]*finder.RuleSet, error) {
	if name == "" {
		sets := make([]*finder.RuleSet, 0, len(cfg.Panels))
		for _, n := range cfg.PanelNames() {
			sets = append(sets, cfg.Panels[n])
		}

		return sets, nil
	}

	rs, ok := cfg.Panels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownPanel, name, xstrings.EnglishJoin(cfg.PanelNames(), true))
	}

	return []*finder.RuleSet{rs}, nil
}

func writeMatches(
	ctx context.Context,
	w io.Writer,
	t *theme.Theme,
	src card.Source,
	rs *finder.RuleSet,
	matches []finder.Match,
	explain bool,
) error {
	header := fmt.Sprintf("%s: %s %s", rs.Name, humanize.Comma(int64(len(matches))), plural(len(matches), "card"))

	_, err := fmt.Fprintln(w, t.TitleStyle.Render(header))
	if err != nil {
		return fmt.Errorf("write preview: %w", err)
	}

	for _, m := range matches {
		_, err := fmt.Fprintf(w, "  %s  %s  %s  %s\n",
			t.SelectedStyle.Render(strconv.FormatInt(m.ID, 10)),
			m.Deck,
			m.SortValue,
			t.SubtleStyle.Render(strings.Join(m.Tags, " ")),
		)
		if err != nil {
			return fmt.Errorf("write preview: %w", err)
		}

		if !explain {
			continue
		}

		c, err := src.Card(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("card %d: %w", m.ID, err)
		}

		ex, err := rs.Explain(c)
		if err != nil {
			return fmt.Errorf("card %d: %w", m.ID, err)
		}

		err = writeExplanation(w, t, "    ", ex)
		if err != nil {
			return err
		}
	}

	return nil
}

func explainCard(ctx context.Context, w io.Writer, t *theme.Theme, src card.Source, sets []*finder.RuleSet, id int64) error {
	c, err := src.Card(ctx, id)
	if err != nil {
		return fmt.Errorf("card %d: %w", id, err)
	}

	for _, rs := range sets {
		ex, err := rs.Explain(c)
		if err != nil {
			return fmt.Errorf("panel %q: %w", rs.Name, err)
		}

		_, err = fmt.Fprintln(w, t.TitleStyle.Render(fmt.Sprintf("%s: %s", rs.Name, verdict(ex.Matched))))
		if err != nil {
			return fmt.Errorf("write explanation: %w", err)
		}

		err = writeExplanation(w, t, "  ", ex)
		if err != nil {
			return err
		}
	}

	return nil
}

func writeExplanation(w io.Writer, t *theme.Theme, indent string, ex finder.Explanation) error {
	lines := make([]string, 0, len(ex.Results)+1)

	for _, r := range ex.Results {
		mark := t.NoMatchStyle.Render("✗")
		if r.Matched {
			mark = t.MatchStyle.Render("✓")
		}

		lines = append(lines, fmt.Sprintf("%s%s %s", indent, mark, r.Predicate))
	}

	summary := fmt.Sprintf("%s%s: %t", indent, ex.Logic, ex.Combined)
	if ex.Negated {
		summary += ", negated"
	}

	lines = append(lines, t.SubtleStyle.Render(summary))

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	if err != nil {
		return fmt.Errorf("write explanation: %w", err)
	}

	return nil
}

// browserSearch returns an Anki browser search selecting the cards.
func browserSearch(ids []int64) string {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	return "cid:" + strings.Join(parts, ",")
}

func copySearch(ids []int64) error {
	if len(ids) == 0 {
		slog.Info("no matching cards, clipboard left unchanged")
		return nil
	}

	err := clipboard.WriteAll(browserSearch(ids))
	if err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}

	slog.Info("copied browser search to clipboard", slog.Int("cards", len(ids)))

	return nil
}

// watchConfig calls fn after each change to the file at path, until ctx is
// canceled. The parent directory is watched so that editors which replace
// the file are noticed.
func watchConfig(ctx context.Context, path string, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}

	defer func() {
		err := watcher.Close()
		if err != nil {
			slog.Error("close watcher", slog.Any("err", err))
		}
	}()

	err = watcher.Add(filepath.Dir(abs))
	if err != nil {
		return fmt.Errorf("watch %q: %w", filepath.Dir(abs), err)
	}

	slog.Info("watching for changes", slog.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if evt.Name != abs || evt.Has(fsnotify.Chmod) || evt.Has(fsnotify.Remove) {
				continue
			}

			slog.Debug("config changed", slog.String("event", evt.String()))
			fn()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			return fmt.Errorf("watch %q: %w", abs, err)
		}
	}
}

func verdict(matched bool) string {
	if matched {
		return "match"
	}

	return "no match"
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}

	return word + "s"
}
