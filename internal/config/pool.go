package config

import (
	"fmt"

	"github.com/spf13/viper"

	"stakePool/internal/ledger"
	"stakePool/internal/model"
)

// PoolSettings describes the initial pool configuration. Coin values are
// decimal TON strings such as "0.1".
type PoolSettings struct {
	Owner          string
	Controller     string
	Enabled        bool
	UpdatesEnabled bool
	MinStake       string
	DepositFee     string
	WithdrawFee    string
	ReceiptPrice   string
	PoolFeeBps     uint64
}

// ToLedger validates the settings and converts them into a pool configuration.
func (s PoolSettings) ToLedger() (ledger.PoolConfig, error) {
	owner, err := ledger.ParseAddress(s.Owner)
	if err != nil {
		return ledger.PoolConfig{}, fmt.Errorf("owner: %w", err)
	}
	controller, err := ledger.ParseAddress(s.Controller)
	if err != nil {
		return ledger.PoolConfig{}, fmt.Errorf("controller: %w", err)
	}

	cfg := ledger.PoolConfig{
		Owner:          owner,
		Controller:     controller,
		Enabled:        s.Enabled,
		UpdatesEnabled: s.UpdatesEnabled,
		PoolFeeBps:     s.PoolFeeBps,
	}
	if cfg.MinStake, err = model.ParseCoins(s.MinStake); err != nil {
		return ledger.PoolConfig{}, fmt.Errorf("min-stake: %w", err)
	}
	if cfg.DepositFee, err = model.ParseCoins(s.DepositFee); err != nil {
		return ledger.PoolConfig{}, fmt.Errorf("deposit-fee: %w", err)
	}
	if cfg.WithdrawFee, err = model.ParseCoins(s.WithdrawFee); err != nil {
		return ledger.PoolConfig{}, fmt.Errorf("withdraw-fee: %w", err)
	}
	if cfg.ReceiptPrice, err = model.ParseCoins(s.ReceiptPrice); err != nil {
		return ledger.PoolConfig{}, fmt.Errorf("receipt-price: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return ledger.PoolConfig{}, err
	}
	return cfg, nil
}

func setPoolDefaults(v *viper.Viper) {
	v.SetDefault("enabled", true)
	v.SetDefault("updates-enabled", true)
	v.SetDefault("min-stake", "1")
	v.SetDefault("deposit-fee", "0.1")
	v.SetDefault("withdraw-fee", "0.1")
	v.SetDefault("receipt-price", "0.1")
	v.SetDefault("pool-fee-bps", 2000)
}

func poolSettings(v *viper.Viper) PoolSettings {
	return PoolSettings{
		Owner:          v.GetString("owner"),
		Controller:     v.GetString("controller"),
		Enabled:        v.GetBool("enabled"),
		UpdatesEnabled: v.GetBool("updates-enabled"),
		MinStake:       v.GetString("min-stake"),
		DepositFee:     v.GetString("deposit-fee"),
		WithdrawFee:    v.GetString("withdraw-fee"),
		ReceiptPrice:   v.GetString("receipt-price"),
		PoolFeeBps:     v.GetUint64("pool-fee-bps"),
	}
}

// StoreSettings selects where pool snapshots live.
type StoreSettings struct {
	Backend   string
	StateFile string
	BadgerDir string
	PGDSN     string
	StateName string
}

func setStoreDefaults(v *viper.Viper) {
	v.SetDefault("store", "file")
	v.SetDefault("state-file", "./data/pool.json")
	v.SetDefault("badger-dir", "./data/badger")
	v.SetDefault("state-name", "default")
}

func storeSettings(v *viper.Viper) StoreSettings {
	return StoreSettings{
		Backend:   v.GetString("store"),
		StateFile: v.GetString("state-file"),
		BadgerDir: v.GetString("badger-dir"),
		PGDSN:     v.GetString("pg-dsn"),
		StateName: v.GetString("state-name"),
	}
}
