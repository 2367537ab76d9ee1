package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poold",
		Short:        "Delegated staking pool ledger",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pool and serve the pool_* JSON-RPC API",
		RunE:  runServe,
	}
	serveCmd.Flags().String("listen", "127.0.0.1:8645", "HTTP listen address for JSON-RPC and /metrics")
	addPoolFlags(serveCmd.Flags())
	addStoreFlags(serveCmd.Flags())
	serveCmd.Flags().StringSlice("journal", []string{"jsonl"}, "receipt sinks (jsonl, postgres)")
	serveCmd.Flags().String("journal-path", "./data/receipts.jsonl", "receipt JSONL path")
	serveCmd.Flags().Duration("snapshot-interval", 30*time.Second, "interval between snapshots, 0 disables periodic snapshots")
	serveCmd.Flags().Int("queue-size", 256, "pending request queue size")
	serveCmd.Flags().Float64("rate-limit", 5, "mutating requests per second per sender, 0 disables")
	serveCmd.Flags().Int("rate-burst", 10, "rate limit burst per sender")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(serveCmd)

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply a requests JSONL file to the pool offline",
		RunE:  runReplay,
	}
	replayCmd.Flags().String("in", "", "input requests JSONL")
	replayCmd.Flags().String("out", "./data/replay-receipts.jsonl", "output receipts JSONL")
	addPoolFlags(replayCmd.Flags())
	addStoreFlags(replayCmd.Flags())
	replayCmd.Flags().String("checkpoint", "./data/replay-checkpoint.json", "checkpoint file path, empty disables")
	replayCmd.Flags().Uint64("batch-size", 500, "records per batch")
	replayCmd.Flags().Uint64("from", 0, "first record (1-based, inclusive)")
	replayCmd.Flags().Uint64("to", 0, "last record (inclusive), 0 means end of input")
	replayCmd.Flags().Bool("skip-invalid", false, "skip malformed requests instead of failing")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts for sink writes")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(replayCmd)

	for _, cmd := range clientCommands() {
		root.AddCommand(cmd)
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPoolFlags(fs *pflag.FlagSet) {
	fs.String("owner", "", "owner address (<workchain>:<hex>)")
	fs.String("controller", "", "controller address (<workchain>:<hex>)")
	addParamFlags(fs)
}

// addParamFlags registers the owner-mutable pool parameters.
func addParamFlags(fs *pflag.FlagSet) {
	fs.Bool("enabled", true, "accept deposits")
	fs.Bool("updates-enabled", true, "allow owner parameter updates")
	fs.String("min-stake", "1", "minimum stake in TON")
	fs.String("deposit-fee", "0.1", "deposit fee in TON")
	fs.String("withdraw-fee", "0.1", "withdraw fee in TON")
	fs.String("receipt-price", "0.1", "receipt price in TON")
	fs.Uint64("pool-fee-bps", 2000, "pool fee in basis points")
}

func addStoreFlags(fs *pflag.FlagSet) {
	fs.String("store", "file", "snapshot store (file, badger, postgres, memory)")
	fs.String("state-file", "./data/pool.json", "snapshot file for the file store")
	fs.String("badger-dir", "./data/badger", "database directory for the badger store")
	fs.String("pg-dsn", "", "Postgres DSN")
	fs.String("state-name", "default", "pool name in the postgres store")
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
