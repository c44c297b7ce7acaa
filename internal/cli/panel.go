package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macropower/cardfont/pkg/finder"
	"github.com/macropower/cardfont/pkg/store"
)

func NewPanelCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Manage the configured panels",
	}

	complete := panelCompletion(ra)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List panel names",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				names, err := storedPanels(ra)
				if err != nil {
					return err
				}

				for _, name := range names {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), name)
					if err != nil {
						return fmt.Errorf("write panel: %w", err)
					}
				}

				return nil
			},
		},
		&cobra.Command{
			Use:               "rename <old> <new>",
			Short:             "Rename a panel",
			Args:              cobra.ExactArgs(2),
			ValidArgsFunction: firstArg(complete),
			RunE: func(_ *cobra.Command, args []string) error {
				return renamePanel(ra, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:               "delete <name>",
			Short:             "Delete a panel",
			Args:              cobra.ExactArgs(1),
			ValidArgsFunction: firstArg(complete),
			RunE: func(_ *cobra.Command, args []string) error {
				return deletePanel(ra, args[0])
			},
		},
	)

	return cmd
}

func renamePanel(ra *RootArgs, oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return errors.New("invalid argument: empty panel name")
	}

	panels, err := existingPanel(ra, oldName)
	if err != nil {
		return err
	}

	err = finder.Panel(panels, oldName).Rename(newName)
	if err != nil {
		return fmt.Errorf("rename panel: %w", err)
	}

	slog.Info("renamed panel", slog.String("from", oldName), slog.String("to", newName))

	return nil
}

func deletePanel(ra *RootArgs, name string) error {
	panels, err := existingPanel(ra, name)
	if err != nil {
		return err
	}

	err = finder.Panel(panels, name).Delete()
	if err != nil {
		return fmt.Errorf("delete panel: %w", err)
	}

	slog.Info("deleted panel", slog.String("name", name))

	return nil
}

// existingPanel returns the panels branch after checking that name is stored
// under it.
func existingPanel(ra *RootArgs, name string) (*store.Branch, error) {
	_, panels, _ := ra.openStore()

	names, err := panels.StoredKeys()
	if err != nil {
		return nil, fmt.Errorf("list panels: %w", err)
	}

	if !slices.Contains(names, name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, name)
	}

	return panels, nil
}

func storedPanels(ra *RootArgs) ([]string, error) {
	_, panels, _ := ra.openStore()

	names, err := panels.StoredKeys()
	if err != nil {
		return nil, fmt.Errorf("list panels: %w", err)
	}

	slices.Sort(names)

	return names, nil
}

// panelCompletion completes panel names from the configuration file.
func panelCompletion(ra *RootArgs) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		names, err := storedPanels(ra)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		out := make([]cobra.Completion, 0, len(names))
		for _, name := range names {
			if strings.HasPrefix(name, toComplete) {
				out = append(out, name)
			}
		}

		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// firstArg applies fn to the first positional argument only.
func firstArg(fn cobra.CompletionFunc) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		return fn(cmd, args, toComplete)
	}
}
