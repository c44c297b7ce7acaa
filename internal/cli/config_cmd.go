package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/cardfont/api"
	"github.com/macropower/cardfont/api/v1beta1/configs"
	"github.com/macropower/cardfont/pkg/config"
)

// ErrConfigExists is returned when an import would replace an existing file
// without --force.
var ErrConfigExists = errors.New("configuration file exists")

type ConfigImportArgs struct {
	*RootArgs

	Output string
	Force  bool
}

func NewConfigCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage the configuration file",
	}

	var force bool

	writeDefault := &cobra.Command{
		Use:   "write-default",
		Short: "Write the default configuration file",
		Long: `Write the default configuration to the --config path. An existing file is
kept unless --force is given, in which case it is backed up first.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			err := configs.WriteDefault(ra.configPath(), force)
			if err != nil {
				return err
			}

			return nil
		},
	}
	writeDefault.Flags().BoolVar(&force, "force", false, "Back up and replace an existing file")

	ia := &ConfigImportArgs{RootArgs: ra}

	importCmd := &cobra.Command{
		Use:   "import <config.json>",
		Short: "Convert a configuration from the original add-on",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConfigImport(ia, args[0])
		},
	}
	importCmd.Flags().StringVarP(&ia.Output, "output", "o", "", "Write to this path instead of --config")
	importCmd.Flags().BoolVar(&ia.Force, "force", false, "Back up and replace an existing file")
	must(importCmd.MarkFlagFilename("output", "yaml", "yml"))

	cmd.AddCommand(
		writeDefault,
		importCmd,
		&cobra.Command{
			Use:   "show",
			Short: "Print the configuration with defaults applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runConfigShow(cmd, ra)
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the configuration file",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return runConfigValidate(ra)
			},
		},
		&cobra.Command{
			Use:   "schema",
			Short: "Print the configuration JSON schema",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := cmd.OutOrStdout().Write(configs.SchemaJSON)
				if err != nil {
					return fmt.Errorf("write schema: %w", err)
				}

				return nil
			},
		},
	)

	return cmd
}

func runConfigShow(cmd *cobra.Command, ra *RootArgs) error {
	cfg, t, err := ra.loadConfig()
	if err != nil {
		return err
	}

	b, err := cfg.MarshalYAML()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if !isTerminal(w) {
		_, err = w.Write(b)
		if err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		return nil
	}

	err = t.Highlight(w, string(b), "yaml")
	if err != nil {
		return fmt.Errorf("highlight config: %w", err)
	}

	return nil
}

func runConfigValidate(ra *RootArgs) error {
	path := ra.configPath()

	cl, err := config.NewLoaderFromFile(path, configs.New, configs.DefaultValidator, config.WithThemeFromData())
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	err = cl.Validate()
	if err != nil {
		return fmt.Errorf("invalid config %q: %w", path, err)
	}

	_, err = cl.Load()
	if err != nil {
		return fmt.Errorf("invalid config %q: %w", path, err)
	}

	slog.Info("config is valid", slog.String("path", path))

	return nil
}

func runConfigImport(ia *ConfigImportArgs, src string) error {
	data, err := api.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read legacy config: %w", err)
	}

	cfg, err := config.ImportLegacy(data)
	if err != nil {
		return err
	}

	b, err := cfg.MarshalYAML()
	if err != nil {
		return err
	}

	path := ia.Output
	if path == "" {
		path = ia.configPath()
	}

	if _, err := os.Stat(path); err == nil && !ia.Force {
		return fmt.Errorf("%w: %s (use --force to replace it)", ErrConfigExists, path)
	}

	err = api.WriteDefaultFile(path, b, ia.Force, "configuration")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	slog.Info("imported config",
		slog.String("from", src),
		slog.String("to", path),
		slog.Int("panels", len(cfg.Panels)),
	)

	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}
