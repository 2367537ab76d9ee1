package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ReplayConfig holds the settings for the replay command.
type ReplayConfig struct {
	Input        string
	Out          string
	Pool         PoolSettings
	Store        StoreSettings
	Checkpoint   string
	BatchSize    uint64
	FirstRecord  uint64
	LastRecord   uint64
	SkipInvalid  bool
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		setPoolDefaults(v)
		setStoreDefaults(v)
		v.SetDefault("out", "./data/replay-receipts.jsonl")
		v.SetDefault("checkpoint", "./data/replay-checkpoint.json")
		v.SetDefault("batch-size", uint64(500))
		v.SetDefault("max-retries", 5)
		v.SetDefault("retry-backoff", 500*time.Millisecond)
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	return ReplayConfig{
		Input:        v.GetString("in"),
		Out:          v.GetString("out"),
		Pool:         poolSettings(v),
		Store:        storeSettings(v),
		Checkpoint:   v.GetString("checkpoint"),
		BatchSize:    v.GetUint64("batch-size"),
		FirstRecord:  v.GetUint64("from"),
		LastRecord:   v.GetUint64("to"),
		SkipInvalid:  v.GetBool("skip-invalid"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}
