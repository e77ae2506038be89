package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// RunMetrics holds the per-run counters. The auditor is a batch job, so
// instead of serving a scrape endpoint the registry is pushed once at exit
// when a Pushgateway is configured.
type RunMetrics struct {
	registry *prometheus.Registry

	UsersChecked prometheus.Counter
	Overages     prometheus.Counter
	Suppressed   prometheus.Counter
	Notified     prometheus.Counter
	MailFailures prometheus.Counter
}

// NewRunMetrics creates and registers the run counters.
func NewRunMetrics() (*RunMetrics, error) {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		UsersChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homeaudit_users_checked_total",
			Help: "Total number of usage records examined during the run.",
		}),
		Overages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homeaudit_overages_total",
			Help: "Total number of users over the configured threshold.",
		}),
		Suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homeaudit_suppressed_total",
			Help: "Total number of over-threshold users not eligible for notification.",
		}),
		Notified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homeaudit_notified_total",
			Help: "Total number of users notified (or that would be, in dry-run).",
		}),
		MailFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "homeaudit_mail_failures_total",
			Help: "Total number of warning emails that failed to send.",
		}),
	}

	for _, c := range []prometheus.Counter{
		m.UsersChecked, m.Overages, m.Suppressed, m.Notified, m.MailFailures,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Push sends the registry to the Pushgateway, grouped by audit group so runs
// against different trees do not overwrite each other.
func (m *RunMetrics) Push(gatewayURL, job, group string) error {
	return push.New(gatewayURL, job).
		Grouping("group", group).
		Gatherer(m.registry).
		Push()
}
