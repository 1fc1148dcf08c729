package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"venueRouter/internal/fees"
)

func main() {
	root := &cobra.Command{
		Use:          "routerctl",
		Short:        "Venue trade router",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Replay an operation script against a simulated router",
		RunE:  runScript,
	}

	runCmd.Flags().String("rpc", "", "optional RPC URL; supplies chain id, prevrandao and eth_call venues")
	runCmd.Flags().Uint64("chain-id", 31337, "chain id used for the domain tag when no RPC is set")
	runCmd.Flags().String("prev-randao", "", "prevrandao (32-byte hex) used for the domain tag when no RPC is set")
	runCmd.Flags().String("router", "", "router address")
	runCmd.Flags().String("owner", "", "initial owner address")
	runCmd.Flags().String("treasury", "", "treasury address")
	runCmd.Flags().String("collector", "", "collector address")
	runCmd.Flags().String("keeper", "", "keeper address")
	runCmd.Flags().Uint("fee-bps", uint(fees.DefaultFeeBps), "initial fee in basis points")
	runCmd.Flags().StringSlice("venues", nil, "venues registered before the script runs (address[:label], comma-separated)")
	runCmd.Flags().String("in", "./data/ops.jsonl", "operation script JSONL")
	runCmd.Flags().String("journal", "./data/notifications.jsonl", "notification journal JSONL (empty disables)")
	runCmd.Flags().String("report", "./data/report.json", "run report path (empty disables)")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the state mirror")
	runCmd.Flags().Int("batch-size", 500, "batch size for DB writes")
	runCmd.Flags().Int("max-retries", 5, "maximum RPC retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().Uint64("start-block", 1, "simulated start block when no RPC is set")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode router notifications from a journal or a live chain",
		RunE:  runInspect,
	}

	inspectCmd.Flags().String("in", "./data/notifications.jsonl", "input notification journal JSONL")
	inspectCmd.Flags().String("out", "./data/typed_notifications.jsonl", "output typed notifications JSONL")
	inspectCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	inspectCmd.Flags().String("rpc", "", "RPC URL; when set, logs are fetched from the chain instead of --in")
	inspectCmd.Flags().String("router", "", "router address to fetch logs for (with --rpc)")
	inspectCmd.Flags().Uint64("from", 0, "start block (inclusive, with --rpc)")
	inspectCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest (with --rpc)")
	inspectCmd.Flags().Uint64("batch-size", 2000, "blocks per log query")
	inspectCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	inspectCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	inspectCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(inspectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
