package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/spf13/cobra"

	"github.com/macropower/cardfont/pkg/hook"
	"github.com/macropower/cardfont/pkg/transform"
)

type RenderArgs struct {
	*RootArgs

	Collection string
	Kind       string
	CardID     int64
	Seed       uint64
	Diff       bool
}

func (ra *RenderArgs) AddFlags(cmd *cobra.Command) {
	kinds := make([]string, 0, len(hook.Kinds))
	for _, k := range hook.Kinds {
		kinds = append(kinds, k.String())
	}

	cmd.Flags().Int64Var(&ra.CardID, "card", 0, "Id of the card being shown")
	cmd.Flags().StringVar(&ra.Kind, "kind", hook.KindReviewQuestion.String(),
		fmt.Sprintf("Render kind, one of: %s", kinds))
	cmd.Flags().Uint64Var(&ra.Seed, "seed", 0, "Seed for font selection; random when 0")
	cmd.Flags().BoolVar(&ra.Diff, "diff", false, "Print a unified diff of the input and output")

	must(cmd.MarkFlagRequired("card"))
	must(cmd.RegisterFlagCompletionFunc("kind",
		cobra.FixedCompletions(kinds, cobra.ShellCompDirectiveNoFileComp),
	))
}

func NewRenderCmd(root *RootArgs) *cobra.Command {
	ra := &RenderArgs{RootArgs: root}

	cmd := &cobra.Command{
		Use:   "render <collection.anki2>",
		Short: "Render a card's question or answer markup read from stdin",
		Long: `Render reads the markup of a card's question or answer from stdin and
prints it as the reviewer would show it: unchanged unless a panel applies to
the card and render kind.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ra.Collection = args[0]

			return runRender(cmd, ra)
		},
	}

	ra.AddFlags(cmd)

	return cmd
}

func runRender(cmd *cobra.Command, ra *RenderArgs) error {
	ctx := cmd.Context()

	kind, err := hook.ParseKind(ra.Kind)
	if err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}

	in, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	cfg, _, err := ra.loadConfig()
	if err != nil {
		return err
	}

	fs, err := fontSource(cfg)
	if err != nil {
		return err
	}

	col, err := openCollection(ctx, ra.Collection)
	if err != nil {
		return err
	}
	defer closeCollection(col)

	c, err := col.Card(ctx, ra.CardID)
	if err != nil {
		return fmt.Errorf("card %d: %w", ra.CardID, err)
	}

	var opts []transform.Option
	if ra.Seed != 0 {
		opts = append(opts, transform.WithSeed(ra.Seed))
	}

	_, panels, _ := ra.openStore()

	session, err := hook.NewSession(
		hook.WithPanels(panels),
		hook.WithTransform(transform.New(fs, opts...)),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	host := hook.NewLocal(hook.Capabilities{PreviewAnswer: true})

	err = session.Register(ctx, host)
	if err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	defer session.Close() //nolint:errcheck // Registered above.

	text := string(in)
	out := host.Show(text, c, kind)

	if ra.Diff {
		diff := udiff.Unified("input", "output", text, out)
		if diff == "" {
			diff = "no changes\n"
		}

		_, err = io.WriteString(cmd.OutOrStdout(), diff)
	} else {
		_, err = io.WriteString(cmd.OutOrStdout(), ensureNewline(out))
	}

	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}

	return s + "\n"
}
