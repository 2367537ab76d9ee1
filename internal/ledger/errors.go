package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
)

// ErrorKind classifies a rejected request.
type ErrorKind int

const (
	// Unaffordable: the attached value cannot pay for a failure notification.
	// The pool keeps the value and nothing is sent back.
	Unaffordable ErrorKind = iota + 1
	BelowMinimumStake
	NoBalance
	Unauthorized
	Disabled
	UpdatesDisabled
	InvalidAmount
)

// Exit codes reported for failed requests.
const (
	ExitUnauthorized      = 73
	ExitUpdatesDisabled   = 74
	ExitPoolDisabled      = 75
	ExitUnaffordable      = 76
	ExitNoBalance         = 77
	ExitDepositBelowMin   = 77
	ExitInvalidAmount     = 78
	ExitBelowMinimumStake = 501
)

var errorKindNames = map[ErrorKind]string{
	Unaffordable:      "unaffordable",
	BelowMinimumStake: "below_minimum_stake",
	NoBalance:         "no_balance",
	Unauthorized:      "unauthorized",
	Disabled:          "disabled",
	UpdatesDisabled:   "updates_disabled",
	InvalidAmount:     "invalid_amount",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error_kind(%d)", int(k))
}

// Failure is a rejected request. Refund is nil for silent failures.
type Failure struct {
	Kind     ErrorKind
	ExitCode int
	Refund   *uint256.Int
}

func (f *Failure) Error() string {
	if f.Refund == nil {
		return fmt.Sprintf("%s (exit %d)", f.Kind, f.ExitCode)
	}
	return fmt.Sprintf("%s (exit %d, refund %s)", f.Kind, f.ExitCode, FormatNano(*f.Refund))
}

// Silent reports whether the sender receives nothing back.
func (f *Failure) Silent() bool {
	return f.Refund == nil
}

func silent(kind ErrorKind, exitCode int) *Failure {
	return &Failure{Kind: kind, ExitCode: exitCode}
}

func refunded(kind ErrorKind, exitCode int, value uint256.Int) *Failure {
	return &Failure{Kind: kind, ExitCode: exitCode, Refund: &value}
}
