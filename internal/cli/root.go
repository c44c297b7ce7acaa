// Package cli implements the cardfont command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/cardfont/pkg/log"
)

const (
	cmdName = "cardfont"
	cmdDesc = `Render matching flashcards in a random font per writing system.`

	cmdExamples = `  # List the cards each panel selects:
  cardfont preview ~/.local/share/Anki2/User\ 1/collection.anki2

  # Explain why a card was or was not selected:
  cardfont preview collection.anki2 --panel Kanji --explain

  # Edit a panel and the enabled fonts:
  cardfont configure

  # Render a card's question as the reviewer would:
  echo 'Japanese 猫' | cardfont render collection.anki2 --card 1000 --kind reviewQuestion

  # Serve the MCP tools over HTTP:
  cardfont serve-mcp collection.anki2 --addr localhost:8080`
)

// RootArgs are the flags shared by every command.
type RootArgs struct {
	tracing *tracing

	LogLevel      string
	LogFormat     string
	ConfigPath    string
	TraceEndpoint string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	flags.StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	flags.StringVar(&ra.ConfigPath, "config", "", "Path to the cardfont configuration file")
	flags.StringVar(&ra.TraceEndpoint, "trace-endpoint", "", "OTLP gRPC endpoint to export traces to")

	must(cmd.MarkPersistentFlagFilename("config", "yaml", "yml"))
	must(cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	))
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:                cmdName,
		Short:              cmdDesc,
		Example:            cmdExamples,
		SilenceUsage:       true,
		PersistentPreRunE:  setup(args),
		PersistentPostRunE: teardown(args),
	}

	args.AddFlags(cmd)

	cmd.AddCommand(
		NewPreviewCmd(args),
		NewRenderCmd(args),
		NewConfigureCmd(args),
		NewFontsCmd(args),
		NewConfigCmd(args),
		NewPanelCmd(args),
		NewServeMCPCmd(args),
		NewVersionCmd(),
	)

	bindEnvVars(cmd)

	return cmd
}

func setup(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), ra.LogLevel, ra.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))

		ra.tracing, err = startTracing(cmd.Context(), ra.TraceEndpoint)
		if err != nil {
			return fmt.Errorf("start tracing: %w", err)
		}

		return nil
	}
}

func teardown(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return ra.tracing.shutdown(cmd.Context())
	}
}
