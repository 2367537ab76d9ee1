package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/holiman/uint256"
)

// Totals aggregates member buckets across the pool.
type Totals struct {
	Balance         uint256.Int
	PendingDeposit  uint256.Int
	PendingWithdraw uint256.Int
	WithdrawReady   uint256.Int
	BalanceSent     uint256.Int
	Members         int
}

// Member pairs an address with its account.
type Member struct {
	Address Address
	Account MemberAccount
}

// Snapshot is a point-in-time copy of the pool, used for persistence.
type Snapshot struct {
	Config      PoolConfig
	BalanceSent uint256.Int
	Members     []Member
	// Seq is the number of requests applied when the snapshot was taken.
	Seq uint64
}

// PoolState owns the configuration, the member map and the pool totals.
// Reads may run concurrently; writes go through the Dispatcher.
type PoolState struct {
	mu      sync.RWMutex
	config  PoolConfig
	members map[Address]MemberAccount
	totals  Totals
	seq     uint64
}

// NewPoolState creates an empty pool.
func NewPoolState(cfg PoolConfig) (*PoolState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pool config: %w", err)
	}
	return &PoolState{
		config:  cfg,
		members: make(map[Address]MemberAccount),
	}, nil
}

// RestorePoolState rebuilds a pool from a snapshot. Totals are recomputed and
// accounts that no transition could have produced are rejected.
func RestorePoolState(snap Snapshot) (*PoolState, error) {
	state, err := NewPoolState(snap.Config)
	if err != nil {
		return nil, err
	}
	state.totals.BalanceSent = snap.BalanceSent
	state.seq = snap.Seq
	for _, m := range snap.Members {
		if m.Account.IsZero() {
			continue
		}
		if _, dup := state.members[m.Address]; dup {
			return nil, fmt.Errorf("duplicate member %s", m.Address)
		}
		if m.Account.PendingWithdraw.Gt(&m.Account.Balance) {
			return nil, fmt.Errorf("member %s: pending withdraw exceeds balance", m.Address)
		}
		state.commit(m.Address, m.Account)
	}
	return state, nil
}

// Snapshot copies the current state.
func (s *PoolState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Config:      s.config,
		BalanceSent: s.totals.BalanceSent,
		Members:     s.sortedMembers(),
		Seq:         s.seq,
	}
}

// Config returns the current pool configuration.
func (s *PoolState) Config() PoolConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Member returns the account for addr; absent members read as all-zero.
func (s *PoolState) Member(addr Address) MemberAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[addr]
}

// Members lists accounts ordered by address.
func (s *PoolState) Members() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedMembers()
}

// Totals returns pool-wide sums.
func (s *PoolState) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals
}

// Seq returns the number of requests applied so far.
func (s *PoolState) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

func (s *PoolState) sortedMembers() []Member {
	out := make([]Member, 0, len(s.members))
	for addr, acct := range s.members {
		out = append(out, Member{Address: addr, Account: acct})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address.Less(out[j].Address)
	})
	return out
}

// commit stores acct for addr and keeps the totals in step. Callers hold mu.
func (s *PoolState) commit(addr Address, acct MemberAccount) {
	prev, existed := s.members[addr]
	adjust(&s.totals.Balance, prev.Balance, acct.Balance)
	adjust(&s.totals.PendingDeposit, prev.PendingDeposit, acct.PendingDeposit)
	adjust(&s.totals.PendingWithdraw, prev.PendingWithdraw, acct.PendingWithdraw)
	adjust(&s.totals.WithdrawReady, prev.WithdrawReady, acct.WithdrawReady)

	switch {
	case acct.IsZero() && existed:
		delete(s.members, addr)
		s.totals.Members--
	case acct.IsZero():
	case !existed:
		s.members[addr] = acct
		s.totals.Members++
	default:
		s.members[addr] = acct
	}
}
