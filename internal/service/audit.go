package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"homeaudit/internal/client"
	"homeaudit/internal/mailer"
	"homeaudit/internal/metrics"
	"homeaudit/internal/model"
	"homeaudit/internal/report"
	"homeaudit/internal/repository"
)

const (
	tib          = int64(1) << 40
	cooldownSecs = 24 * 60 * 60
	mailSubject  = "Disk space warning"
)

// UsageSource lists per-user aggregate disk consumption for a group.
type UsageSource interface {
	GroupUsage(ctx context.Context, group string) ([]model.UsageRecord, error)
}

// DirectorySource resolves a user's employment status and contact email.
type DirectorySource interface {
	Lookup(ctx context.Context, userID string) (*model.DirectoryEntry, error)
}

// AuditService runs the disk-usage audit for one group.
type AuditService interface {
	// NotifyAllowed decides whether a flagged user may be notified now.
	// Read-only: it never touches the ledger beyond the point lookup.
	NotifyAllowed(ctx context.Context, userID string, entry *model.DirectoryEntry) (bool, error)

	// Run audits every usage record in the group and returns the run summary.
	// write enables sending email and committing ledger updates; otherwise the
	// run only reports what it would have done.
	Run(ctx context.Context, group string, limitTiB float64, write bool) (*report.RunSummary, error)
}

// Deps are the collaborators an audit run needs, wired explicitly at startup.
type Deps struct {
	Usage     UsageSource
	Directory DirectorySource
	Ledger    repository.OverageRepository
	Notifier  mailer.Notifier
	Metrics   *metrics.RunMetrics
	Printer   *report.Printer
	Log       *zap.Logger
	Sender    string
	RunID     string
	Now       func() time.Time
}

type auditService struct {
	deps Deps
}

// NewAuditService constructs an AuditService. Deps.Now defaults to time.Now.
func NewAuditService(d Deps) AuditService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &auditService{deps: d}
}

// ExceedsThreshold reports whether bytesUsed is strictly over limitTiB
// tebibytes. A user exactly at the limit is not flagged.
func ExceedsThreshold(bytesUsed int64, limitTiB float64) bool {
	return float64(bytesUsed) > limitTiB*float64(tib)
}

// cooldownElapsed reports whether at least one whole 24-hour period has
// passed between last and now. Whole elapsed days, not a sliding window:
// floor(elapsed-seconds / 86400) >= 1, so exactly 24h is eligible.
func cooldownElapsed(last, now time.Time) bool {
	elapsed := now.Sub(last)
	if elapsed < 0 {
		return false
	}
	return int64(elapsed/time.Second)/cooldownSecs >= 1
}

// decide is the pure eligibility decision over the inputs NotifyAllowed
// gathers. Kept separate so the time arithmetic is testable without repo or
// clock plumbing.
func decide(entry *model.DirectoryEntry, prior *model.OverageRecord, now time.Time) bool {
	if entry == nil || !entry.Active {
		return false
	}
	if prior == nil {
		return true
	}
	return cooldownElapsed(prior.LastNotifiedAt, now)
}

func (s *auditService) NotifyAllowed(ctx context.Context, userID string, entry *model.DirectoryEntry) (bool, error) {
	if entry == nil || !entry.Active {
		return false, nil
	}

	prior, err := s.deps.Ledger.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Never notified before: always eligible.
			return true, nil
		}
		return false, fmt.Errorf("ledger lookup for %s: %w", userID, err)
	}

	now := s.deps.Now()
	allowed := decide(entry, prior, now)
	if !allowed {
		remaining := 24*time.Hour - now.Sub(prior.LastNotifiedAt)
		s.deps.Log.Info("user inside cooldown window",
			zap.String("user", userID),
			zap.Duration("eligible_in", remaining))
	}
	return allowed, nil
}

func (s *auditService) Run(ctx context.Context, group string, limitTiB float64, write bool) (*report.RunSummary, error) {
	d := s.deps
	summary := &report.RunSummary{
		RunID:    d.RunID,
		Group:    group,
		LimitTiB: limitTiB,
		Write:    write,
		Started:  d.Now().UTC(),
	}

	records, err := d.Usage.GroupUsage(ctx, group)
	if err != nil {
		return nil, err
	}
	d.Log.Info("usage records fetched", zap.String("group", group), zap.Int("count", len(records)))

	for _, rec := range records {
		d.Metrics.UsersChecked.Inc()

		if !ExceedsThreshold(rec.BytesUsed, limitTiB) {
			d.Printer.Line(rec.UserID, rec.BytesUsedHuman, report.OutcomeOK)
			summary.Add(rec.UserID, rec.BytesUsedHuman, report.OutcomeOK)
			continue
		}
		d.Metrics.Overages.Inc()

		entry, err := d.Directory.Lookup(ctx, rec.UserID)
		if err != nil {
			if errors.Is(err, client.ErrUserNotFound) {
				// A flagged user must be resolvable. An unknown user means the
				// usage and directory data disagree; stop rather than skip.
				return nil, fmt.Errorf("user %s is over threshold but unknown to the directory: %w", rec.UserID, err)
			}
			return nil, err
		}

		allowed, err := s.NotifyAllowed(ctx, rec.UserID, entry)
		if err != nil {
			return nil, err
		}
		if !allowed {
			d.Metrics.Suppressed.Inc()
			d.Printer.Line(rec.UserID, rec.BytesUsedHuman, report.OutcomeSuppressed)
			summary.Add(rec.UserID, rec.BytesUsedHuman, report.OutcomeSuppressed)
			continue
		}

		d.Metrics.Notified.Inc()
		d.Printer.Line(rec.UserID, rec.BytesUsedHuman, report.OutcomeNotified)
		summary.Add(rec.UserID, rec.BytesUsedHuman, report.OutcomeNotified)

		if !write {
			continue
		}

		if err := d.Notifier.Send(ctx, warningMessage(d.Sender, entry, rec, limitTiB)); err != nil {
			// Not fatal. The ledger stays untouched so the user remains
			// eligible on the next run.
			d.Metrics.MailFailures.Inc()
			d.Log.Error("warning email failed",
				zap.String("user", rec.UserID),
				zap.String("email", entry.Email),
				zap.Error(err))
			continue
		}
		d.Log.Info("warning email sent",
			zap.String("user", rec.UserID),
			zap.String("email", entry.Email))

		commit := &model.OverageRecord{
			UserID:           rec.UserID,
			LastNotifiedSize: rec.BytesUsedHuman,
			LastNotifiedAt:   d.Now().UTC(),
		}
		if err := d.Ledger.Upsert(ctx, commit); err != nil {
			// Ledger consistency outranks finishing the batch.
			return nil, fmt.Errorf("ledger update for %s: %w", rec.UserID, err)
		}
	}

	summary.Finished = d.Now().UTC()
	return summary, nil
}

// warningMessage builds the email asking a user to reduce their usage.
func warningMessage(sender string, entry *model.DirectoryEntry, rec model.UsageRecord, limitTiB float64) mailer.Message {
	body := fmt.Sprintf("%s;\n"+
		"You are using %s in your home directory. Please help Scientific "+
		"Computing by decreasing your disk usage to %gTiB or less. Thanks "+
		"for your cooperation.\n"+
		"Regards,\n    Scientific Computing",
		entry.FirstName, rec.BytesUsedHuman, limitTiB)
	return mailer.Message{
		From:    sender,
		To:      []string{entry.Email},
		Subject: mailSubject,
		Body:    body,
	}
}
