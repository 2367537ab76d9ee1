package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stakePool/internal/model"
)

// Journal stores the receipts of one named pool.
type Journal struct {
	store *Store
	name  string
}

// Journal returns the receipt journal of the named pool.
func (s *Store) Journal(name string) *Journal {
	return &Journal{store: s, name: name}
}

// PutReceipts inserts receipts. A receipt already stored under the same seq is kept.
func (j *Journal) PutReceipts(ctx context.Context, receipts []model.Receipt) error {
	if len(receipts) == 0 {
		return nil
	}
	if j.name == "" {
		return fmt.Errorf("state name required")
	}
	batch := &pgx.Batch{}
	for _, r := range receipts {
		processedAt := r.ProcessedAt
		if processedAt == "" {
			processedAt = "now"
		}
		var request string
		if r.Request != nil {
			raw, err := json.Marshal(r.Request)
			if err != nil {
				return fmt.Errorf("marshal request %d: %w", r.Seq, err)
			}
			request = string(raw)
		}
		batch.Queue(`
			INSERT INTO pool_receipts (
				pool_name, seq, op, op_code, sender, status, reply_op, exit_code,
				refund, credited, payout, delayed, members, request, processed_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8,
				NULLIF($9, '')::numeric, NULLIF($10, '')::numeric,
				NULLIF($11, '')::numeric, NULLIF($12, '')::numeric,
				$13, NULLIF($14, '')::jsonb, $15::text::timestamptz
			)
			ON CONFLICT (pool_name, seq) DO NOTHING
		`,
			j.name,
			int64(r.Seq),
			r.Op,
			int64(r.OpCode),
			r.From,
			r.Status,
			int64(r.ReplyOp),
			r.ExitCode,
			r.Refund,
			r.Credited,
			r.Payout,
			r.Delayed,
			r.Members,
			request,
			processedAt,
		)
	}

	br := j.store.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range receipts {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert receipt: %w", err)
		}
	}
	return nil
}

// ReceiptsAfter returns the pool's receipts with a seq above after.
func (j *Journal) ReceiptsAfter(ctx context.Context, after uint64) ([]model.Receipt, error) {
	rows, err := j.store.pool.Query(ctx, `
		SELECT seq, op, op_code, sender, status, reply_op, exit_code,
			COALESCE(refund::text, ''), COALESCE(credited::text, ''),
			COALESCE(payout::text, ''), COALESCE(delayed::text, ''),
			members, COALESCE(request::text, ''), processed_at
		FROM pool_receipts
		WHERE pool_name = $1 AND seq > $2
		ORDER BY seq
	`, j.name, int64(after))
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}
	defer rows.Close()

	var out []model.Receipt
	for rows.Next() {
		var (
			r                    model.Receipt
			seq, opCode, replyOp int64
			request              string
			processedAt          time.Time
		)
		if err := rows.Scan(
			&seq, &r.Op, &opCode, &r.From, &r.Status, &replyOp, &r.ExitCode,
			&r.Refund, &r.Credited, &r.Payout, &r.Delayed,
			&r.Members, &request, &processedAt,
		); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		r.Seq = uint64(seq)
		r.OpCode = uint32(opCode)
		r.ReplyOp = uint32(replyOp)
		r.ProcessedAt = processedAt.UTC().Format(time.RFC3339Nano)
		if request != "" {
			r.Request = &model.Request{}
			if err := json.Unmarshal([]byte(request), r.Request); err != nil {
				return nil, fmt.Errorf("decode request %d: %w", r.Seq, err)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}
	return out, nil
}
