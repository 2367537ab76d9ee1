package ledger

// Op identifies a pool operation by its message op code.
type Op uint32

const (
	OpDeposit        Op = 2077040623
	OpWithdraw       Op = 3665837821
	OpAcceptDeposit  Op = 2577928699
	OpAcceptWithdraw Op = 2711607604
	OpUpdateParams   Op = 0x2b9f1e4d
	OpRecordSent     Op = 0x5a3c7e10
	OpRecordReturned Op = 0x5a3c7e11
)

// Response op codes sent back to the requester.
const (
	OpDepositResponse           Op = 3326208306
	OpWithdrawResponseImmediate Op = 601104865
	OpWithdrawResponseDelayed   Op = 1958425639
	OpBounce                    Op = 0xffffffff
)

var opNames = map[Op]string{
	OpDeposit:                   "deposit",
	OpWithdraw:                  "withdraw",
	OpAcceptDeposit:             "accept_deposit",
	OpAcceptWithdraw:            "accept_withdraw",
	OpUpdateParams:              "update_params",
	OpRecordSent:                "record_sent",
	OpRecordReturned:            "record_returned",
	OpDepositResponse:           "deposit_response",
	OpWithdrawResponseImmediate: "withdraw_immediate",
	OpWithdrawResponseDelayed:   "withdraw_delayed",
	OpBounce:                    "bounce",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseOp resolves an operation by name.
func ParseOp(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}
