package main

import (
	"github.com/aretw0/thicket/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the automaton as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph LR) of the automaton. With --input the
states visited and still active after reading it are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := engineOptions(cmd, args)
		engine, err := cli.CreateEngine(cmd.Context(), opts, cli.CreateLogger(opts.Debug))
		if err != nil {
			return err
		}

		input, _ := cmd.Flags().GetString("input")
		return cli.WriteGraph(cmd.Context(), engine, cmd.OutOrStdout(), input, cmd.Flags().Changed("input"))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("input", "", "Highlight the states reached by this input")
}
