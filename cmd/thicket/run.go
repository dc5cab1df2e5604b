package main

import (
	"github.com/aretw0/thicket/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Query the automaton interactively",
	Long: `Loads the automaton and reads one input per line until "exit", "quit"
or end of input, printing whether each input is accepted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")
		trace, _ := cmd.Flags().GetBool("trace")
		watch, _ := cmd.Flags().GetBool("watch")
		sessionID, _ := cmd.Flags().GetString("session")

		// Piped stdin gets the quiet interface unless asked otherwise.
		if !jsonMode && !cmd.Flags().Changed("headless") && !cli.IsInteractive() {
			headless = true
		}

		store, err := storeOptions(cmd)
		if err != nil {
			return err
		}

		return cli.Execute(cli.RunOptions{
			EngineOptions: engineOptions(cmd, args),
			Store:         store,
			Headless:      headless,
			JSON:          jsonMode,
			Trace:         trace,
			Watch:         watch,
			SessionID:     sessionID,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no prompt)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("trace", false, "Print the active state sets after every symbol")
	runCmd.Flags().BoolP("watch", "w", false, "Reload the automaton when its file changes")
	runCmd.Flags().String("session", "", "Record queries in this session's transcript")
	addStoreFlags(runCmd, cli.StoreFile)

	// 'run' is the default when no command is provided.
	rootCmd.Args = runCmd.Args
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
