package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/thicket/internal/cli"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage recorded session transcripts",
	Long:  `List, inspect, and remove the transcripts recorded by 'run --session', 'serve' and 'mcp'.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all recorded sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(mgr *session.Manager) error {
			sessions, err := mgr.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions found.")
				return nil
			}

			fmt.Fprintln(out, "Sessions:")
			for _, s := range sessions {
				fmt.Fprintln(out, "- "+s)
			}
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the transcript of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(mgr *session.Manager) error {
			transcript, err := mgr.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", args[0], err)
			}

			data, err := json.MarshalIndent(transcript, "", "  ")
			if err != nil {
				return fmt.Errorf("error marshaling transcript: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(mgr *session.Manager) error {
			failed := 0
			for _, sessionID := range args {
				if err := mgr.Delete(cmd.Context(), sessionID); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", sessionID, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", sessionID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d sessions could not be removed", failed, len(args))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	for _, c := range []*cobra.Command{sessionLsCmd, sessionInspectCmd, sessionRmCmd} {
		addStoreFlags(c, cli.StoreFile)
		sessionCmd.AddCommand(c)
	}
}

func withSessions(cmd *cobra.Command, fn func(*session.Manager) error) error {
	debug, _ := cmd.Flags().GetBool("debug")
	store, err := storeOptions(cmd)
	if err != nil {
		return err
	}
	mgr, closeStore, err := cli.OpenSessions(store, cli.CreateLogger(debug))
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(mgr)
}
