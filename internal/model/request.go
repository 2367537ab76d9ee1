package model

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"stakePool/internal/ledger"
)

// Request is the JSON form of a pool request. Amounts are nano-unit strings.
type Request struct {
	Op      string      `json:"op"`
	From    string      `json:"from"`
	Value   string      `json:"value,omitempty"`
	Amount  string      `json:"amount,omitempty"`
	Members []string    `json:"members,omitempty"`
	Params  *ParamsView `json:"params,omitempty"`
}

// ToLedger converts the record into a typed ledger request.
func (r Request) ToLedger() (ledger.Request, error) {
	from, err := ledger.ParseAddress(r.From)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	value, err := ParseNano(r.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	amount, err := ParseNano(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}

	op, ok := ledger.ParseOp(strings.ToLower(strings.TrimSpace(r.Op)))
	if !ok {
		return nil, fmt.Errorf("unknown op: %s", r.Op)
	}

	switch op {
	case ledger.OpDeposit:
		return ledger.Deposit{From: from, Value: value}, nil
	case ledger.OpWithdraw:
		return ledger.Withdraw{From: from, Amount: amount, Value: value}, nil
	case ledger.OpAcceptDeposit, ledger.OpAcceptWithdraw:
		members, err := parseMembers(r.Members)
		if err != nil {
			return nil, err
		}
		if op == ledger.OpAcceptDeposit {
			return ledger.AcceptDeposit{From: from, Members: members, Value: value}, nil
		}
		return ledger.AcceptWithdraw{From: from, Members: members, Value: value}, nil
	case ledger.OpUpdateParams:
		if r.Params == nil {
			return nil, fmt.Errorf("params are required")
		}
		params, err := r.Params.ToLedger()
		if err != nil {
			return nil, err
		}
		return ledger.UpdateParams{From: from, Params: params, Value: value}, nil
	case ledger.OpRecordSent:
		return ledger.RecordSent{From: from, Amount: amount}, nil
	case ledger.OpRecordReturned:
		return ledger.RecordReturned{From: from, Amount: amount}, nil
	default:
		return nil, fmt.Errorf("op %s is not a request", op)
	}
}

// NewRequest builds the JSON form of a typed ledger request.
func NewRequest(req ledger.Request) Request {
	out := Request{
		Op:   req.Op().String(),
		From: req.Sender().String(),
	}
	if v := req.Attached(); !v.IsZero() {
		out.Value = ledger.FormatNano(v)
	}
	switch r := req.(type) {
	case ledger.Withdraw:
		out.Amount = nanoOrEmpty(r.Amount)
	case ledger.AcceptDeposit:
		out.Members = formatMembers(r.Members)
	case ledger.AcceptWithdraw:
		out.Members = formatMembers(r.Members)
	case ledger.UpdateParams:
		view := NewParamsView(r.Params)
		out.Params = &view
	case ledger.RecordSent:
		out.Amount = nanoOrEmpty(r.Amount)
	case ledger.RecordReturned:
		out.Amount = nanoOrEmpty(r.Amount)
	}
	return out
}

func parseMembers(inputs []string) ([]ledger.Address, error) {
	members := make([]ledger.Address, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		addr, err := ledger.ParseAddress(input)
		if err != nil {
			return nil, fmt.Errorf("member: %w", err)
		}
		members = append(members, addr)
	}
	return members, nil
}

func formatMembers(members []ledger.Address) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.String())
	}
	return out
}

func nanoOrEmpty(v uint256.Int) string {
	if v.IsZero() {
		return ""
	}
	return ledger.FormatNano(v)
}
