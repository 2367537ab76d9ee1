package model

import (
	"fmt"

	"stakePool/internal/ledger"
)

// MemberView is the external form of a member account.
type MemberView struct {
	Address         string `json:"address"`
	Balance         string `json:"balance"`
	PendingDeposit  string `json:"pending_deposit"`
	PendingWithdraw string `json:"pending_withdraw"`
	WithdrawReady   string `json:"withdraw_ready"`
}

func NewMemberView(addr ledger.Address, acct ledger.MemberAccount) MemberView {
	return MemberView{
		Address:         addr.String(),
		Balance:         ledger.FormatNano(acct.Balance),
		PendingDeposit:  ledger.FormatNano(acct.PendingDeposit),
		PendingWithdraw: ledger.FormatNano(acct.PendingWithdraw),
		WithdrawReady:   ledger.FormatNano(acct.WithdrawReady),
	}
}

// ToLedger parses the view back into an address and account.
func (v MemberView) ToLedger() (ledger.Address, ledger.MemberAccount, error) {
	addr, err := ledger.ParseAddress(v.Address)
	if err != nil {
		return ledger.Address{}, ledger.MemberAccount{}, err
	}
	var acct ledger.MemberAccount
	if acct.Balance, err = ParseNano(v.Balance); err != nil {
		return addr, acct, fmt.Errorf("balance: %w", err)
	}
	if acct.PendingDeposit, err = ParseNano(v.PendingDeposit); err != nil {
		return addr, acct, fmt.Errorf("pending_deposit: %w", err)
	}
	if acct.PendingWithdraw, err = ParseNano(v.PendingWithdraw); err != nil {
		return addr, acct, fmt.Errorf("pending_withdraw: %w", err)
	}
	if acct.WithdrawReady, err = ParseNano(v.WithdrawReady); err != nil {
		return addr, acct, fmt.Errorf("withdraw_ready: %w", err)
	}
	return addr, acct, nil
}

// ParamsView is the external form of the owner-mutable pool parameters.
type ParamsView struct {
	Enabled        bool   `json:"enabled"`
	UpdatesEnabled bool   `json:"updates_enabled"`
	MinStake       string `json:"min_stake"`
	DepositFee     string `json:"deposit_fee"`
	WithdrawFee    string `json:"withdraw_fee"`
	ReceiptPrice   string `json:"receipt_price"`
	PoolFeeBps     uint64 `json:"pool_fee_bps"`
}

func NewParamsView(p ledger.Params) ParamsView {
	return ParamsView{
		Enabled:        p.Enabled,
		UpdatesEnabled: p.UpdatesEnabled,
		MinStake:       ledger.FormatNano(p.MinStake),
		DepositFee:     ledger.FormatNano(p.DepositFee),
		WithdrawFee:    ledger.FormatNano(p.WithdrawFee),
		ReceiptPrice:   ledger.FormatNano(p.ReceiptPrice),
		PoolFeeBps:     p.PoolFeeBps,
	}
}

func (v ParamsView) ToLedger() (ledger.Params, error) {
	p := ledger.Params{
		Enabled:        v.Enabled,
		UpdatesEnabled: v.UpdatesEnabled,
		PoolFeeBps:     v.PoolFeeBps,
	}
	var err error
	if p.MinStake, err = ParseNano(v.MinStake); err != nil {
		return p, fmt.Errorf("min_stake: %w", err)
	}
	if p.DepositFee, err = ParseNano(v.DepositFee); err != nil {
		return p, fmt.Errorf("deposit_fee: %w", err)
	}
	if p.WithdrawFee, err = ParseNano(v.WithdrawFee); err != nil {
		return p, fmt.Errorf("withdraw_fee: %w", err)
	}
	if p.ReceiptPrice, err = ParseNano(v.ReceiptPrice); err != nil {
		return p, fmt.Errorf("receipt_price: %w", err)
	}
	return p, nil
}

// StatusView summarizes the pool.
type StatusView struct {
	Owner           string     `json:"owner"`
	Controller      string     `json:"controller"`
	Params          ParamsView `json:"params"`
	Members         int        `json:"members"`
	Balance         string     `json:"balance"`
	PendingDeposit  string     `json:"pending_deposit"`
	PendingWithdraw string     `json:"pending_withdraw"`
	WithdrawReady   string     `json:"withdraw_ready"`
	BalanceSent     string     `json:"balance_sent"`
	Seq             uint64     `json:"seq"`
}

func NewStatusView(cfg ledger.PoolConfig, totals ledger.Totals, seq uint64) StatusView {
	return StatusView{
		Owner:           cfg.Owner.String(),
		Controller:      cfg.Controller.String(),
		Params:          NewParamsView(cfg.Params()),
		Members:         totals.Members,
		Balance:         ledger.FormatNano(totals.Balance),
		PendingDeposit:  ledger.FormatNano(totals.PendingDeposit),
		PendingWithdraw: ledger.FormatNano(totals.PendingWithdraw),
		WithdrawReady:   ledger.FormatNano(totals.WithdrawReady),
		BalanceSent:     ledger.FormatNano(totals.BalanceSent),
		Seq:             seq,
	}
}
