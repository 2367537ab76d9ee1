package ledger

import "github.com/holiman/uint256"

// ResponseKind is the success response emitted for a request.
type ResponseKind int

const (
	DepositAccepted ResponseKind = iota + 1
	WithdrawImmediate
	WithdrawDelayed
	Accepted
)

func (k ResponseKind) String() string {
	switch k {
	case DepositAccepted:
		return "deposit_accepted"
	case WithdrawImmediate:
		return "immediate"
	case WithdrawDelayed:
		return "delayed"
	case Accepted:
		return "ok"
	default:
		return "unknown"
	}
}

// Op returns the response message op code, or zero when none is sent.
func (k ResponseKind) Op() Op {
	switch k {
	case DepositAccepted:
		return OpDepositResponse
	case WithdrawImmediate:
		return OpWithdrawResponseImmediate
	case WithdrawDelayed:
		return OpWithdrawResponseDelayed
	default:
		return 0
	}
}

// Response describes a successful request.
type Response struct {
	Kind ResponseKind
	// Credited is the net amount added to pendingDeposit by a deposit.
	Credited uint256.Int
	// Payout is released to the member right away (withdrawReady and
	// pendingDeposit draws).
	Payout uint256.Int
	// Delayed is moved into pendingWithdraw and awaits the controller.
	Delayed uint256.Int
	// Members counts accounts touched by controller operations.
	Members int
}

// Result is the outcome of one request: exactly one of Response or Failure is set.
type Result struct {
	Op       Op
	From     Address
	Response *Response
	Failure  *Failure
}

func (r Result) OK() bool {
	return r.Failure == nil
}

// Status is a short label for logs, metrics and receipts.
func (r Result) Status() string {
	if r.Failure != nil {
		return r.Failure.Kind.String()
	}
	if r.Response != nil {
		return r.Response.Kind.String()
	}
	return "unknown"
}

// ReplyOp is the op code of the message sent back to the requester, zero if none.
func (r Result) ReplyOp() Op {
	if r.Failure != nil {
		if r.Failure.Silent() {
			return 0
		}
		return OpBounce
	}
	if r.Response != nil {
		return r.Response.Kind.Op()
	}
	return 0
}
