package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/helmcode/kubectl-ai-harness/pkg/config"
	"github.com/spf13/cobra"
)

func NewListCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the scenarios in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAndValidate(configPath)
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to harness config file (defaults to the built-in catalog)")
	return cmd
}

func printCatalog(out io.Writer, cfg *config.Config) {
	bold := color.New(color.Bold)
	for _, s := range cfg.Scenarios {
		bold.Fprintf(out, "%s\n", s.ID)
		fmt.Fprintf(out, "   %s\n", s.Description)
		fmt.Fprintf(out, "   Manifest: %s\n", s.Manifest)
		if s.RequiresNode {
			fmt.Fprintf(out, "   %s\n", color.YellowString("Requires a worker node"))
		}
	}
}
