package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// Outcome classifies what the run decided for one user.
type Outcome string

const (
	// OutcomeOK: usage at or under the threshold.
	OutcomeOK Outcome = "ok"
	// OutcomeSuppressed: over the threshold but not eligible for notification
	// (inactive, or still inside the cooldown window).
	OutcomeSuppressed Outcome = "suppressed"
	// OutcomeNotified: over the threshold and eligible; in write mode a
	// warning email was sent and the ledger updated.
	OutcomeNotified Outcome = "notified"
)

// UserResult is one line of the run report.
type UserResult struct {
	UserID         string  `json:"user_id"`
	BytesUsedHuman string  `json:"bytes_used_human"`
	Outcome        Outcome `json:"outcome"`
}

// RunSummary is the durable record of one audit run. It feeds the final log
// line and, when archiving is configured, the object-store copy.
type RunSummary struct {
	RunID    string       `json:"run_id"`
	Group    string       `json:"group"`
	LimitTiB float64      `json:"limit_tib"`
	Write    bool         `json:"write"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Checked  int          `json:"checked"`
	Results  []UserResult `json:"results"`
}

// Add records one user's outcome.
func (s *RunSummary) Add(userID, sizeHuman string, outcome Outcome) {
	s.Checked++
	s.Results = append(s.Results, UserResult{
		UserID:         userID,
		BytesUsedHuman: sizeHuman,
		Outcome:        outcome,
	})
}

// Count returns how many users ended with the given outcome.
func (s *RunSummary) Count(outcome Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

// JSON marshals the summary for archiving.
func (s *RunSummary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

var outcomeColors = map[Outcome]*color.Color{
	OutcomeOK:         color.New(color.FgGreen),
	OutcomeSuppressed: color.New(color.FgYellow),
	OutcomeNotified:   color.New(color.FgRed),
}

// Printer writes the per-user report lines operators read when running the
// audit by hand: green ok, yellow suppressed, red notified.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Line prints one colorized user line.
func (p *Printer) Line(userID, sizeHuman string, outcome Outcome) {
	c, ok := outcomeColors[outcome]
	if !ok {
		fmt.Fprintf(p.w, "%-16s  %s\n", userID, sizeHuman)
		return
	}
	c.Fprintf(p.w, "%-16s  %s\n", userID, sizeHuman)
}
