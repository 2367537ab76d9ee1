package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
)

// MaxPoolFeeBps caps the pool fee at 100%.
const MaxPoolFeeBps = 10_000

// PoolConfig holds pool parameters. It changes only through owner updates.
type PoolConfig struct {
	Owner          Address
	Controller     Address
	Enabled        bool
	UpdatesEnabled bool
	MinStake       uint256.Int
	DepositFee     uint256.Int
	WithdrawFee    uint256.Int
	ReceiptPrice   uint256.Int
	PoolFeeBps     uint64
}

// Params is the owner-mutable subset of PoolConfig.
type Params struct {
	Enabled        bool
	UpdatesEnabled bool
	MinStake       uint256.Int
	DepositFee     uint256.Int
	WithdrawFee    uint256.Int
	ReceiptPrice   uint256.Int
	PoolFeeBps     uint64
}

// DefaultConfig mirrors the deploy parameters used by the reference pool:
// 1 TON minimum stake, 0.1 TON fees and receipt price, 20% pool fee.
func DefaultConfig(owner, controller Address) PoolConfig {
	return PoolConfig{
		Owner:          owner,
		Controller:     controller,
		Enabled:        true,
		UpdatesEnabled: true,
		MinStake:       Coins(1_000_000_000),
		DepositFee:     Coins(100_000_000),
		WithdrawFee:    Coins(100_000_000),
		ReceiptPrice:   Coins(100_000_000),
		PoolFeeBps:     2000,
	}
}

// Validate checks the configuration for values the ledger cannot operate with.
func (c PoolConfig) Validate() error {
	if c.Controller.IsZero() {
		return fmt.Errorf("controller address is required")
	}
	if c.Owner.IsZero() {
		return fmt.Errorf("owner address is required")
	}
	return c.Params().Validate()
}

// Params returns the owner-mutable part of the configuration.
func (c PoolConfig) Params() Params {
	return Params{
		Enabled:        c.Enabled,
		UpdatesEnabled: c.UpdatesEnabled,
		MinStake:       c.MinStake,
		DepositFee:     c.DepositFee,
		WithdrawFee:    c.WithdrawFee,
		ReceiptPrice:   c.ReceiptPrice,
		PoolFeeBps:     c.PoolFeeBps,
	}
}

// WithParams returns a copy of c with p applied.
func (c PoolConfig) WithParams(p Params) PoolConfig {
	c.Enabled = p.Enabled
	c.UpdatesEnabled = p.UpdatesEnabled
	c.MinStake = p.MinStake
	c.DepositFee = p.DepositFee
	c.WithdrawFee = p.WithdrawFee
	c.ReceiptPrice = p.ReceiptPrice
	c.PoolFeeBps = p.PoolFeeBps
	return c
}

// Validate checks that the fee and stake parameters are in range.
func (p Params) Validate() error {
	if p.PoolFeeBps > MaxPoolFeeBps {
		return fmt.Errorf("pool fee %d bps exceeds %d", p.PoolFeeBps, MaxPoolFeeBps)
	}
	for name, v := range map[string]uint256.Int{
		"min stake":     p.MinStake,
		"deposit fee":   p.DepositFee,
		"withdraw fee":  p.WithdrawFee,
		"receipt price": p.ReceiptPrice,
	} {
		if v.Gt(&maxCoins) {
			return fmt.Errorf("%s out of range", name)
		}
	}
	return nil
}
