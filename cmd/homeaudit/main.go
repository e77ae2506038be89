package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"homeaudit/internal/archive"
	"homeaudit/internal/client"
	"homeaudit/internal/config"
	"homeaudit/internal/database"
	"homeaudit/internal/database/migration"
	"homeaudit/internal/logging"
	"homeaudit/internal/mailer"
	"homeaudit/internal/metrics"
	"homeaudit/internal/otel"
	"homeaudit/internal/report"
	"homeaudit/internal/repository/postgres"
	"homeaudit/internal/service"
)

type options struct {
	limit   float64
	group   string
	write   bool
	verbose bool
	debug   bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "homeaudit",
		Short: "Warn users using too much home-directory disk space",
		Long: "homeaudit checks one group's per-user aggregate disk consumption\n" +
			"against a threshold and emails over-limit users, at most once per day.\n" +
			"Without --write it only reports what it would do.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().Float64Var(&opts.limit, "limit", 0.5, "Usage threshold in TiB")
	cmd.Flags().StringVar(&opts.group, "group", "scicomp", "Group to check")
	cmd.Flags().BoolVar(&opts.write, "write", false, "Send email and update the ledger")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Chatty logging")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Very chatty logging")

	return cmd
}

func run(ctx context.Context, opts options) error {
	cfg := config.Load()
	if err := cfg.Validate(opts.write); err != nil {
		return err
	}
	if !cfg.GroupAllowed(opts.group) {
		return fmt.Errorf("group %q is not in the allow-list (%s)", opts.group, strings.Join(cfg.Groups, ", "))
	}

	runID := uuid.NewString()
	log := logging.New(opts.verbose, opts.debug).With(zap.String("run_id", runID))
	defer func() { _ = log.Sync() }()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(ctx) }()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to ledger database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log); err != nil {
		return err
	}

	usageClient, err := client.NewUsageClient(cfg.UsageAPI)
	if err != nil {
		return err
	}
	dirClient, err := client.NewDirectoryClient(cfg.DirectoryAPI)
	if err != nil {
		return err
	}

	if opts.debug {
		if info, err := usageClient.TokenInfo(ctx); err != nil {
			log.Warn("token validity check failed", zap.Error(err))
		} else {
			log.Warn("usage API token validity", zap.String("valid_until", info.ValidUntil))
		}
	}

	var notifier mailer.Notifier
	if opts.write {
		notifier, err = mailer.NewSMTP(cfg.SMTP)
		if err != nil {
			return err
		}
	}

	runMetrics, err := metrics.NewRunMetrics()
	if err != nil {
		return err
	}

	svc := service.NewAuditService(service.Deps{
		Usage:     usageClient,
		Directory: dirClient,
		Ledger:    postgres.NewOveragePostgres(db),
		Notifier:  notifier,
		Metrics:   runMetrics,
		Printer:   report.NewPrinter(os.Stdout),
		Log:       log,
		Sender:    cfg.SMTP.Sender,
		RunID:     runID,
	})

	summary, err := svc.Run(ctx, opts.group, opts.limit, opts.write)
	if err != nil {
		log.Error("audit run failed", zap.Error(err))
		return err
	}

	log.Info("audit run finished",
		zap.String("group", summary.Group),
		zap.Int("checked", summary.Checked),
		zap.Int("ok", summary.Count(report.OutcomeOK)),
		zap.Int("suppressed", summary.Count(report.OutcomeSuppressed)),
		zap.Int("notified", summary.Count(report.OutcomeNotified)),
	)

	archiveSummary(ctx, cfg, summary, log)
	pushMetrics(cfg, runMetrics, opts.group, log)

	return nil
}

// archiveSummary stores the run report in object storage when configured.
// The audit result stands even if the archival copy fails.
func archiveSummary(ctx context.Context, cfg *config.AppConfig, summary *report.RunSummary, log *zap.Logger) {
	if cfg.Archive.Endpoint == "" {
		return
	}
	store, err := archive.NewMinIO(cfg.Archive)
	if err != nil {
		log.Warn("report archive unavailable", zap.Error(err))
		return
	}
	data, err := summary.JSON()
	if err != nil {
		log.Warn("report marshal failed", zap.Error(err))
		return
	}
	key := fmt.Sprintf("reports/%s/%s.json", summary.Group, summary.RunID)
	if err := store.Put(ctx, key, data, "application/json"); err != nil {
		log.Warn("report archive failed", zap.Error(err))
		return
	}
	log.Info("run report archived", zap.String("key", key))
}

// pushMetrics sends the run counters to the Pushgateway when configured.
func pushMetrics(cfg *config.AppConfig, m *metrics.RunMetrics, group string, log *zap.Logger) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}
	if err := m.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName, group); err != nil {
		log.Warn("metrics push failed", zap.Error(err))
		return
	}
	log.Debug("metrics pushed", zap.String("gateway", cfg.Metrics.PushgatewayURL))
}
