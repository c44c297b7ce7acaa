package cli

import (
	"github.com/spf13/cobra"

	"github.com/macropower/cardfont/pkg/mcp"
)

type ServeMCPArgs struct {
	*RootArgs

	Collection string
	Addr       string
}

func NewServeMCPCmd(ra *RootArgs) *cobra.Command {
	sa := &ServeMCPArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "serve-mcp <collection.anki2>",
		Short: "Serve the card search and rendering tools over MCP",
		Long: `Serve-mcp exposes find_cards, evaluate_card, render_card and list_fonts to
MCP clients. With --addr the streamable HTTP transport is served at ` + mcp.Endpoint + `;
otherwise the server speaks MCP over stdio.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sa.Collection = args[0]

			return runServeMCP(cmd, sa)
		},
	}

	cmd.Flags().StringVar(&sa.Addr, "addr", "", "Address to serve HTTP on, e.g. localhost:8080; stdio when empty")

	return cmd
}

func runServeMCP(cmd *cobra.Command, sa *ServeMCPArgs) error {
	ctx := cmd.Context()

	cfg, _, err := sa.loadConfig()
	if err != nil {
		return err
	}

	fs, err := fontSource(cfg)
	if err != nil {
		return err
	}

	col, err := openCollection(ctx, sa.Collection)
	if err != nil {
		return err
	}
	defer closeCollection(col)

	_, panels, _ := sa.openStore()

	return mcp.NewServer(sa.Addr, col, panels, fs).Serve(ctx)
}
