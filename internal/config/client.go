package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ClientConfig holds the settings shared by the RPC client commands.
type ClientConfig struct {
	URL      string
	Timeout  time.Duration
	LogLevel string
}

func LoadClient(cfgFile string, flags *pflag.FlagSet) (ClientConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("url", "http://127.0.0.1:8645")
		v.SetDefault("timeout", 15*time.Second)
		v.SetDefault("log-level", "warn")
	})
	if err != nil {
		return ClientConfig{}, err
	}
	return ClientConfig{
		URL:      v.GetString("url"),
		Timeout:  v.GetDuration("timeout"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
