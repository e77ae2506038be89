package postgres

import (
	"context"
	"database/sql"

	"homeaudit/internal/model"
	"homeaudit/internal/repository"
)

// OveragePostgres is a PostgreSQL implementation of repository.OverageRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type OveragePostgres struct {
	db *sql.DB
}

// NewOveragePostgres creates a new OveragePostgres repository.
func NewOveragePostgres(db *sql.DB) *OveragePostgres {
	return &OveragePostgres{db: db}
}

var _ repository.OverageRepository = (*OveragePostgres)(nil)

// FindByUser fetches the ledger row for a user. sql.ErrNoRows is returned
// unwrapped so callers can treat "never notified" as a distinct case.
func (r *OveragePostgres) FindByUser(ctx context.Context, userID string) (*model.OverageRecord, error) {
	const q = `
		SELECT user_id, last_notified_size, last_notified_at
		FROM overages
		WHERE user_id = $1
	`
	row := r.db.QueryRowContext(ctx, q, userID)
	var rec model.OverageRecord
	if err := row.Scan(
		&rec.UserID,
		&rec.LastNotifiedSize,
		&rec.LastNotifiedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Upsert inserts the row or, when the user already has one, replaces its size
// and timestamp.
func (r *OveragePostgres) Upsert(ctx context.Context, rec *model.OverageRecord) error {
	const q = `
		INSERT INTO overages (user_id, last_notified_size, last_notified_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET last_notified_size = EXCLUDED.last_notified_size,
		    last_notified_at   = EXCLUDED.last_notified_at
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.UserID,
		rec.LastNotifiedSize,
		rec.LastNotifiedAt,
	)
	return err
}
