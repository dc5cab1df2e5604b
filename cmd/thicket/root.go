package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/thicket/internal/cli"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "thicket [file]",
	Short: "Thicket simulates nondeterministic finite automata",
	Long: `Thicket loads an NFA with epsilon transitions from a JSON, YAML or HCL
document and decides whether it accepts input strings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Rejections were already reported one verdict per line.
		if !errors.Is(err, cli.ErrRejected) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().String("epsilon-marker", "", "Also read this transition key as epsilon (legacy documents use \"*\")")
}

// engineOptions collects the flags shared by every command that loads an automaton.
func engineOptions(cmd *cobra.Command, args []string) cli.EngineOptions {
	debug, _ := cmd.Flags().GetBool("debug")
	marker, _ := cmd.Flags().GetString("epsilon-marker")
	opts := cli.EngineOptions{Debug: debug, EpsilonMarker: marker}
	if len(args) > 0 {
		opts.Path = args[0]
	}
	return opts
}

func addStoreFlags(cmd *cobra.Command, defaultKind string) {
	cmd.Flags().String("store", defaultKind, "Transcript store: memory, file, bolt or redis")
	cmd.Flags().String("sessions-dir", "", "Directory for the file store (default .thicket/sessions)")
	cmd.Flags().String("bolt-path", "", "Database file for the bolt store (default .thicket/sessions.db)")
	cmd.Flags().String("redis-addr", "localhost:6379", "Address of the redis store")
	cmd.Flags().Int("keep-queries", 0, "Keep only the most recent N queries per transcript (0 keeps all)")
}

// addSweepFlags registers scheduled pruning for long-running commands.
func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().String("prune-schedule", "", "Cron schedule for deleting idle sessions, e.g. \"@hourly\" (empty disables)")
	cmd.Flags().Duration("max-age", 24*time.Hour, "Idle time after which a session is pruned")
}

// startSweeper starts pruning when --prune-schedule is set.
func startSweeper(ctx context.Context, cmd *cobra.Command, sessions *session.Manager, logger *slog.Logger) error {
	schedule, _ := cmd.Flags().GetString("prune-schedule")
	maxAge, _ := cmd.Flags().GetDuration("max-age")
	return cli.StartSweeper(ctx, sessions, schedule, maxAge, logger)
}

// storeOptions reads the store flags and the encryption key from the environment.
func storeOptions(cmd *cobra.Command) (cli.StoreOptions, error) {
	kind, _ := cmd.Flags().GetString("store")
	dir, _ := cmd.Flags().GetString("sessions-dir")
	boltPath, _ := cmd.Flags().GetString("bolt-path")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")
	keep, _ := cmd.Flags().GetInt("keep-queries")

	key, err := cli.KeyFromEnv()
	if err != nil {
		return cli.StoreOptions{}, err
	}
	return cli.StoreOptions{
		Kind:          kind,
		FilePath:      dir,
		BoltPath:      boltPath,
		RedisAddr:     redisAddr,
		EncryptionKey: key,
		MaxQueries:    keep,
	}, nil
}
