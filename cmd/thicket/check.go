package main

import (
	"os"

	"github.com/aretw0/thicket/internal/cli"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file> [input...]",
	Short: "Decide a batch of inputs and exit 1 if any is rejected",
	Long: `Prints one verdict per input. Inputs come from the arguments or, when
none are given, from stdin one per line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trace, _ := cmd.Flags().GetBool("trace")
		opts := engineOptions(cmd, args)

		engine, err := cli.CreateEngine(cmd.Context(), opts, cli.CreateLogger(opts.Debug))
		if err != nil {
			return err
		}

		inputs := args[1:]
		if len(inputs) == 0 {
			if inputs, err = cli.ReadInputs(os.Stdin); err != nil {
				return err
			}
		}
		return cli.Check(cmd.Context(), engine, inputs, cmd.OutOrStdout(), trace)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("trace", false, "Print the active state sets after every symbol")
}
