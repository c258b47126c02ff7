package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	appoutbox "dwelling/internal/app/outbox"
	infraoutbox "dwelling/internal/infra/outbox"
)

// OutboxStore writes records on the caller's transaction. Claim uses
// FOR UPDATE SKIP LOCKED so several workers can share the table.
type OutboxStore struct {
	db           *sql.DB
	ClaimTimeout time.Duration
}

func NewOutboxStore(db *sql.DB) *OutboxStore {
	return &OutboxStore{db: db, ClaimTimeout: time.Minute}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	headers, err := json.Marshal(record.Headers)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO app_outbox (id, name, payload, occurred_at, aggregate, headers, state, attempts, next_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'NEW', 0, $7, $7)
	`, record.ID, record.Name, record.Payload, record.OccurredAt.UTC(), record.Aggregate, headers, now)
	return err
}

func (s *OutboxStore) Flush(context.Context) error {
	return nil
}

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		UPDATE app_outbox SET state = 'CLAIMED', claimed_by = $1, claimed_at = $2
		WHERE id = (
			SELECT id FROM app_outbox
			WHERE (state IN ('NEW', 'FAILED') AND next_attempt_at <= $2)
			   OR (state = 'CLAIMED' AND claimed_at <= $3)
			ORDER BY next_attempt_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, name, payload, occurred_at, aggregate, headers, attempts
	`, workerID, now, now.Add(-s.ClaimTimeout))

	var (
		msg     infraoutbox.Message
		headers []byte
	)
	if err := row.Scan(&msg.ID, &msg.Name, &msg.Payload, &msg.OccurredAt, &msg.Aggregate, &headers, &msg.Attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(headers) > 0 {
		if err := json.Unmarshal(headers, &msg.Headers); err != nil {
			return nil, err
		}
	}
	return &msg, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE app_outbox SET state = 'SENT', sent_at = $2 WHERE id = $1`, id, time.Now().UTC())
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE app_outbox SET state = 'FAILED', attempts = attempts + 1, next_attempt_at = $2, last_error = $3
		WHERE id = $1
	`, id, next.UTC(), errMsg)
	return err
}

var _ appoutbox.Outbox = (*OutboxStore)(nil)
var _ infraoutbox.Source = (*OutboxStore)(nil)
