package repository

import (
	"context"

	"homeaudit/internal/model"
)

// OverageRepository defines data access for the notification ledger using SQL
// queries only. No eligibility logic here — strictly persistence operations.
type OverageRepository interface {
	// FindByUser returns the ledger record for a user, or sql.ErrNoRows when
	// the user has never been notified.
	FindByUser(ctx context.Context, userID string) (*model.OverageRecord, error)

	// Upsert inserts or replaces the ledger record for rec.UserID. The
	// one-record-per-user invariant is enforced by the primary key; callers
	// only ever move LastNotifiedAt forward.
	Upsert(ctx context.Context, rec *model.OverageRecord) error
}
