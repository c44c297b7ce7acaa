package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/cardfont/pkg/editor"
	"github.com/macropower/cardfont/pkg/fonts"
	"github.com/macropower/cardfont/pkg/log"
)

// logCapacity is how many log records are held while the settings form
// owns the terminal.
const logCapacity = 100

type ConfigureArgs struct {
	*RootArgs

	Panel string
}

func NewConfigureCmd(ra *RootArgs) *cobra.Command {
	ca := &ConfigureArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Edit a panel and the enabled fonts interactively",
		Long: `Configure opens the settings panel. Saving writes the panel's rule set
and the enabled fonts of every writing system to the configuration file in
one write; quitting leaves the file unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigure(cmd, ca)
		},
	}

	cmd.Flags().StringVarP(&ca.Panel, "panel", "p", "", "Panel to edit; prompts when several exist")
	must(cmd.RegisterFlagCompletionFunc("panel", panelCompletion(ra)))

	return cmd
}

func runConfigure(cmd *cobra.Command, ca *ConfigureArgs) error {
	cfg, t, err := ca.loadConfig()
	if err != nil {
		return err
	}

	cat, err := catalog(cfg)
	if err != nil {
		return err
	}

	lvl, err := log.GetLevel(ca.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}

	format, err := log.GetFormat(ca.LogFormat)
	if err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}

	_, panels, languages := ca.openStore()

	ed := editor.New(panels, languages, cat,
		editor.WithTheme(t),
		editor.WithWritingSystems(fonts.Names()...),
	)

	flush := log.Capture(cmd.ErrOrStderr(), logCapacity, func(w io.Writer) slog.Handler {
		return log.CreateHandler(w, lvl, format)
	})

	err = ed.Run(cmd.Context(), ca.Panel)

	flushErr := flush()
	if flushErr != nil {
		slog.Error("flush logs", slog.Any("err", flushErr))
	}

	if errors.Is(err, editor.ErrCanceled) {
		slog.Info("settings not saved")
		return nil
	}
	if err != nil {
		return fmt.Errorf("configure: %w", err)
	}

	slog.Info("settings saved", slog.String("path", ca.configPath()))

	return nil
}
