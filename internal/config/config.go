package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. POOL_MIN_STAKE.
const EnvPrefix = "POOL"

// Config holds the settings for the serve command.
type Config struct {
	Listen           string
	Pool             PoolSettings
	Store            StoreSettings
	Journal          []string
	JournalPath      string
	SnapshotInterval time.Duration
	QueueSize        int
	RateLimit        float64
	RateBurst        int
	ShutdownTimeout  time.Duration
	LogLevel         string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		setPoolDefaults(v)
		setStoreDefaults(v)
		v.SetDefault("listen", "127.0.0.1:8645")
		v.SetDefault("journal", []string{"jsonl"})
		v.SetDefault("journal-path", "./data/receipts.jsonl")
		v.SetDefault("snapshot-interval", 30*time.Second)
		v.SetDefault("queue-size", 256)
		v.SetDefault("rate-limit", 5.0)
		v.SetDefault("rate-burst", 10)
		v.SetDefault("shutdown-timeout", 10*time.Second)
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Listen:           v.GetString("listen"),
		Pool:             poolSettings(v),
		Store:            storeSettings(v),
		Journal:          getStringSlice(v, "journal"),
		JournalPath:      v.GetString("journal-path"),
		SnapshotInterval: v.GetDuration("snapshot-interval"),
		QueueSize:        v.GetInt("queue-size"),
		RateLimit:        v.GetFloat64("rate-limit"),
		RateBurst:        v.GetInt("rate-burst"),
		ShutdownTimeout:  v.GetDuration("shutdown-timeout"),
		LogLevel:         v.GetString("log-level"),
	}
	for _, sink := range cfg.Journal {
		switch sink {
		case "jsonl", "postgres":
		default:
			return Config{}, fmt.Errorf("unknown journal sink %q", sink)
		}
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	switch typed := v.Get(key).(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return cleanStrings(strings.Split(typed, ","))
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
