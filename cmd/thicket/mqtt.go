package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/thicket/internal/cli"
	"github.com/aretw0/thicket/pkg/adapters/mqtt"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var mqttCmd = &cobra.Command{
	Use:   "mqtt <file>",
	Short: "Answer queries published on an MQTT topic",
	Long: `Subscribes to --in-topic and publishes one JSON verdict per message on
--out-topic. A message is either raw text, a JSON string, or an object
{"input": "...", "session_id": "..."}.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		broker, _ := cmd.Flags().GetString("broker")
		clientID, _ := cmd.Flags().GetString("client-id")
		inTopic, _ := cmd.Flags().GetString("in-topic")
		outTopic, _ := cmd.Flags().GetString("out-topic")
		qos, _ := cmd.Flags().GetInt("qos")
		if qos < 0 || qos > 2 {
			return fmt.Errorf("invalid qos %d: must be 0, 1 or 2", qos)
		}
		if clientID == "" {
			clientID = "thicket-" + uuid.NewString()[:8]
		}

		opts := engineOptions(cmd, args)
		logger := cli.CreateLogger(opts.Debug)

		engine, err := cli.CreateEngine(cmd.Context(), opts, logger)
		if err != nil {
			return err
		}

		store, err := storeOptions(cmd)
		if err != nil {
			return err
		}
		sessions, closeStore, err := cli.OpenSessions(store, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := startSweeper(ctx, cmd, sessions, logger); err != nil {
			return err
		}

		bridge := mqtt.NewBridge(
			mqtt.NewClient(broker, clientID, logger),
			engine,
			mqtt.WithTopics(inTopic, outTopic),
			mqtt.WithQoS(byte(qos)),
			mqtt.WithSessions(sessions),
			mqtt.WithLogger(logger),
		)
		logger.Info("Starting Thicket MQTT bridge", "broker", broker, "client_id", clientID)
		return bridge.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mqttCmd)

	mqttCmd.Flags().String("broker", "tcp://localhost:1883", "MQTT broker URL")
	mqttCmd.Flags().String("client-id", "", "MQTT client ID (default thicket-<random>)")
	mqttCmd.Flags().String("in-topic", mqtt.DefaultInTopic, "Topic carrying queries")
	mqttCmd.Flags().String("out-topic", mqtt.DefaultOutTopic, "Topic receiving verdicts")
	mqttCmd.Flags().Int("qos", 0, "Quality of service for subscription and replies")
	addStoreFlags(mqttCmd, cli.StoreMemory)
	addSweepFlags(mqttCmd)
}
