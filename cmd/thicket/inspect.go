package main

import (
	"github.com/aretw0/thicket/internal/cli"
	"github.com/aretw0/thicket/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Describe the automaton",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := engineOptions(cmd, args)
		engine, err := cli.CreateEngine(cmd.Context(), opts, cli.CreateLogger(opts.Debug))
		if err != nil {
			return err
		}
		return cli.Inspect(engine, cmd.OutOrStdout(), tui.NewRenderer())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
