package model

import (
	"fmt"

	"stakePool/internal/ledger"
)

// SnapshotRecord is the persisted form of a pool snapshot.
type SnapshotRecord struct {
	Owner       string       `json:"owner"`
	Controller  string       `json:"controller"`
	Params      ParamsView   `json:"params"`
	BalanceSent string       `json:"balance_sent"`
	Seq         uint64       `json:"seq"`
	Members     []MemberView `json:"members"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
}

func NewSnapshotRecord(snap ledger.Snapshot) SnapshotRecord {
	rec := SnapshotRecord{
		Owner:       snap.Config.Owner.String(),
		Controller:  snap.Config.Controller.String(),
		Params:      NewParamsView(snap.Config.Params()),
		BalanceSent: ledger.FormatNano(snap.BalanceSent),
		Seq:         snap.Seq,
		Members:     make([]MemberView, 0, len(snap.Members)),
	}
	for _, m := range snap.Members {
		rec.Members = append(rec.Members, NewMemberView(m.Address, m.Account))
	}
	return rec
}

// ToLedger converts the record into a ledger snapshot.
func (r SnapshotRecord) ToLedger() (ledger.Snapshot, error) {
	owner, err := ledger.ParseAddress(r.Owner)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("owner: %w", err)
	}
	controller, err := ledger.ParseAddress(r.Controller)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("controller: %w", err)
	}
	params, err := r.Params.ToLedger()
	if err != nil {
		return ledger.Snapshot{}, err
	}
	sent, err := ParseNano(r.BalanceSent)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("balance_sent: %w", err)
	}

	cfg := ledger.PoolConfig{Owner: owner, Controller: controller}.WithParams(params)
	snap := ledger.Snapshot{
		Config:      cfg,
		BalanceSent: sent,
		Seq:         r.Seq,
		Members:     make([]ledger.Member, 0, len(r.Members)),
	}
	for _, mv := range r.Members {
		addr, acct, err := mv.ToLedger()
		if err != nil {
			return ledger.Snapshot{}, fmt.Errorf("member %s: %w", mv.Address, err)
		}
		snap.Members = append(snap.Members, ledger.Member{Address: addr, Account: acct})
	}
	return snap, nil
}
