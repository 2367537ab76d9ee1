package ledger

import "github.com/holiman/uint256"

// Request is a typed pool operation.
type Request interface {
	Op() Op
	Sender() Address
	// Attached is the value carried by the request message.
	Attached() uint256.Int
}

// Deposit adds Value, minus fees, to the sender's pending deposit.
type Deposit struct {
	From  Address
	Value uint256.Int
}

// Withdraw releases Amount from the sender's buckets; a zero Amount
// withdraws everything reachable. Value pays for processing only.
type Withdraw struct {
	From   Address
	Amount uint256.Int
	Value  uint256.Int
}

// AcceptDeposit commits pending deposits of Members into balance.
type AcceptDeposit struct {
	From    Address
	Members []Address
	Value   uint256.Int
}

// AcceptWithdraw releases pending withdrawals of Members.
type AcceptWithdraw struct {
	From    Address
	Members []Address
	Value   uint256.Int
}

// UpdateParams replaces the owner-mutable pool parameters.
type UpdateParams struct {
	From   Address
	Params Params
	Value  uint256.Int
}

// RecordSent notes Amount forwarded to the validator.
type RecordSent struct {
	From   Address
	Amount uint256.Int
}

// RecordReturned notes Amount returned by the validator.
type RecordReturned struct {
	From   Address
	Amount uint256.Int
}

func (Deposit) Op() Op        { return OpDeposit }
func (Withdraw) Op() Op       { return OpWithdraw }
func (AcceptDeposit) Op() Op  { return OpAcceptDeposit }
func (AcceptWithdraw) Op() Op { return OpAcceptWithdraw }
func (UpdateParams) Op() Op   { return OpUpdateParams }
func (RecordSent) Op() Op     { return OpRecordSent }
func (RecordReturned) Op() Op { return OpRecordReturned }

func (r Deposit) Sender() Address        { return r.From }
func (r Withdraw) Sender() Address       { return r.From }
func (r AcceptDeposit) Sender() Address  { return r.From }
func (r AcceptWithdraw) Sender() Address { return r.From }
func (r UpdateParams) Sender() Address   { return r.From }
func (r RecordSent) Sender() Address     { return r.From }
func (r RecordReturned) Sender() Address { return r.From }

func (r Deposit) Attached() uint256.Int        { return r.Value }
func (r Withdraw) Attached() uint256.Int       { return r.Value }
func (r AcceptDeposit) Attached() uint256.Int  { return r.Value }
func (r AcceptWithdraw) Attached() uint256.Int { return r.Value }
func (r UpdateParams) Attached() uint256.Int   { return r.Value }
func (RecordSent) Attached() uint256.Int       { return uint256.Int{} }
func (RecordReturned) Attached() uint256.Int   { return uint256.Int{} }
