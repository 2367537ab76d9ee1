package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stakePool/internal/model"
)

//go:embed schema.sql
var schema string

// Store provides Postgres persistence for pool snapshots and receipts.
// Every row is scoped by pool name.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables used by the store if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveSnapshot replaces the stored state of the named pool in one transaction.
func (s *Store) SaveSnapshot(ctx context.Context, name string, rec model.SnapshotRecord) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	p := rec.Params
	_, err = tx.Exec(ctx, `
		INSERT INTO pool_state (
			name, owner, controller, enabled, updates_enabled,
			min_stake, deposit_fee, withdraw_fee, receipt_price, pool_fee_bps,
			balance_sent, seq, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6::text::numeric, $7::text::numeric, $8::text::numeric, $9::text::numeric, $10,
			$11::text::numeric, $12, now()
		)
		ON CONFLICT (name) DO UPDATE SET
			owner = EXCLUDED.owner,
			controller = EXCLUDED.controller,
			enabled = EXCLUDED.enabled,
			updates_enabled = EXCLUDED.updates_enabled,
			min_stake = EXCLUDED.min_stake,
			deposit_fee = EXCLUDED.deposit_fee,
			withdraw_fee = EXCLUDED.withdraw_fee,
			receipt_price = EXCLUDED.receipt_price,
			pool_fee_bps = EXCLUDED.pool_fee_bps,
			balance_sent = EXCLUDED.balance_sent,
			seq = EXCLUDED.seq,
			updated_at = now()
	`,
		name, rec.Owner, rec.Controller, p.Enabled, p.UpdatesEnabled,
		p.MinStake, p.DepositFee, p.WithdrawFee, p.ReceiptPrice, int64(p.PoolFeeBps),
		rec.BalanceSent, int64(rec.Seq),
	)
	if err != nil {
		return fmt.Errorf("upsert pool state: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pool_members WHERE pool_name = $1`, name); err != nil {
		return fmt.Errorf("clear members: %w", err)
	}

	if len(rec.Members) > 0 {
		batch := &pgx.Batch{}
		for _, m := range rec.Members {
			batch.Queue(`
				INSERT INTO pool_members (
					pool_name, address, balance, pending_deposit, pending_withdraw, withdraw_ready, updated_at
				) VALUES ($1, $2, $3::text::numeric, $4::text::numeric, $5::text::numeric, $6::text::numeric, now())
			`,
				name, m.Address, m.Balance, m.PendingDeposit, m.PendingWithdraw, m.WithdrawReady,
			)
		}
		br := tx.SendBatch(ctx, batch)
		for range rec.Members {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert member: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("insert members: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored state of the named pool.
func (s *Store) LoadSnapshot(ctx context.Context, name string) (model.SnapshotRecord, bool, error) {
	if name == "" {
		return model.SnapshotRecord{}, false, fmt.Errorf("state name required")
	}
	var (
		rec    model.SnapshotRecord
		feeBps int64
		seq    int64
	)
	row := s.pool.QueryRow(ctx, `
		SELECT owner, controller, enabled, updates_enabled,
			min_stake::text, deposit_fee::text, withdraw_fee::text, receipt_price::text, pool_fee_bps,
			balance_sent::text, seq
		FROM pool_state WHERE name = $1
	`, name)
	err := row.Scan(
		&rec.Owner, &rec.Controller, &rec.Params.Enabled, &rec.Params.UpdatesEnabled,
		&rec.Params.MinStake, &rec.Params.DepositFee, &rec.Params.WithdrawFee, &rec.Params.ReceiptPrice, &feeBps,
		&rec.BalanceSent, &seq,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SnapshotRecord{}, false, nil
		}
		return model.SnapshotRecord{}, false, fmt.Errorf("load pool state: %w", err)
	}
	rec.Params.PoolFeeBps = uint64(feeBps)
	rec.Seq = uint64(seq)

	rows, err := s.pool.Query(ctx, `
		SELECT address, balance::text, pending_deposit::text, pending_withdraw::text, withdraw_ready::text
		FROM pool_members WHERE pool_name = $1 ORDER BY address
	`, name)
	if err != nil {
		return model.SnapshotRecord{}, false, fmt.Errorf("load members: %w", err)
	}
	defer rows.Close()

	rec.Members = []model.MemberView{}
	for rows.Next() {
		var m model.MemberView
		if err := rows.Scan(&m.Address, &m.Balance, &m.PendingDeposit, &m.PendingWithdraw, &m.WithdrawReady); err != nil {
			return model.SnapshotRecord{}, false, fmt.Errorf("scan member: %w", err)
		}
		rec.Members = append(rec.Members, m)
	}
	if err := rows.Err(); err != nil {
		return model.SnapshotRecord{}, false, fmt.Errorf("load members: %w", err)
	}
	return rec, true, nil
}
