package model

import (
	"encoding/json"
	"time"

	"stakePool/internal/ledger"
)

// Receipt is the journaled outcome of one processed request.
type Receipt struct {
	Seq         uint64   `json:"seq"`
	Op          string   `json:"op"`
	OpCode      uint32   `json:"op_code"`
	From        string   `json:"from"`
	Status      string   `json:"status"`
	ReplyOp     uint32   `json:"reply_op,omitempty"`
	ExitCode    int      `json:"exit_code,omitempty"`
	Refund      string   `json:"refund,omitempty"`
	Credited    string   `json:"credited,omitempty"`
	Payout      string   `json:"payout,omitempty"`
	Delayed     string   `json:"delayed,omitempty"`
	Members     int      `json:"members,omitempty"`
	Request     *Request `json:"request,omitempty"`
	ProcessedAt string   `json:"processed_at"`
}

// NewReceipt records a dispatcher result. Seq is the pool sequence after the request.
func NewReceipt(seq uint64, req ledger.Request, res ledger.Result, at time.Time) Receipt {
	r := Receipt{
		Seq:         seq,
		Op:          res.Op.String(),
		OpCode:      uint32(res.Op),
		From:        res.From.String(),
		Status:      res.Status(),
		ReplyOp:     uint32(res.ReplyOp()),
		ProcessedAt: at.UTC().Format(time.RFC3339Nano),
	}
	if req != nil {
		rec := NewRequest(req)
		r.Request = &rec
	}
	if f := res.Failure; f != nil {
		r.ExitCode = f.ExitCode
		if f.Refund != nil {
			r.Refund = ledger.FormatNano(*f.Refund)
		}
		return r
	}
	if resp := res.Response; resp != nil {
		r.Credited = nanoOrEmpty(resp.Credited)
		r.Payout = nanoOrEmpty(resp.Payout)
		r.Delayed = nanoOrEmpty(resp.Delayed)
		r.Members = resp.Members
	}
	return r
}

// OK reports whether the request was applied.
func (r Receipt) OK() bool {
	return r.ExitCode == 0
}

// MarshalJSON ensures Receipt is encoded with stable field names.
func (r Receipt) MarshalJSON() ([]byte, error) {
	type Alias Receipt
	return json.Marshal(Alias(r))
}

// UnmarshalJSON decodes a Receipt from JSON.
func (r *Receipt) UnmarshalJSON(data []byte) error {
	type Alias Receipt
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Receipt(a)
	return nil
}
