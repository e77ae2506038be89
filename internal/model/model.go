package model

import "time"

// UsageRecord is one user's aggregate consumption in a group's home-directory
// tree, as reported by the storage-analytics service. Produced fresh on every
// run and never persisted here.
type UsageRecord struct {
	UserID         string `json:"user_id"`
	BytesUsed      int64  `json:"bytes_used"`
	BytesUsedHuman string `json:"bytes_used_human"`
}

// DirectoryEntry is the HR directory's view of a user. Read-only; absence of
// an entry signals an unknown user.
type DirectoryEntry struct {
	Active    bool   `json:"active"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

// OverageRecord is the persisted notification-ledger row for a user who has
// tripped the threshold at least once. At most one record exists per user;
// LastNotifiedAt only ever advances.
type OverageRecord struct {
	UserID           string    `json:"user_id"`
	LastNotifiedSize string    `json:"last_notified_size"`
	LastNotifiedAt   time.Time `json:"last_notified_at"`
}
