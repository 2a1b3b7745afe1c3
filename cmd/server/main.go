package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"sagra/internal/adapters/email"
	"sagra/internal/adapters/export"
	web "sagra/internal/adapters/http"
	"sagra/internal/adapters/http/middleware"
	"sagra/internal/adapters/http/perf"
	"sagra/internal/adapters/markdown"
	"sagra/internal/adapters/storage"
	athleteStore "sagra/internal/adapters/storage/athlete"
	injuryStore "sagra/internal/adapters/storage/injury"
	outboxStore "sagra/internal/adapters/storage/outbox"
	phaseStore "sagra/internal/adapters/storage/phase"
	progressStore "sagra/internal/adapters/storage/progress"
	"sagra/internal/application/orchestrators"
	"sagra/internal/config"
	"sagra/internal/domain/outbox"
	"sagra/internal/domain/phase"
	"sagra/internal/domain/rehab"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "sagra",
		Short:         "ACL rehabilitation scheduler for rugby athletes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./sagra.yaml)")

	rootCmd.AddCommand(serveCmd(&configFile))
	rootCmd.AddCommand(migrateCmd(&configFile))
	rootCmd.AddCommand(scheduleCmd(&configFile))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config and installs the slog handler it describes.
func loadConfig(configFile string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.JSONLogs() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler).With("version", version))
	return cfg, nil
}

// openDB opens the SQLite file with WAL, foreign keys and a busy timeout, then migrates it.
func openDB(dbPath string) (*sql.DB, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(db, dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func migrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			db, err := openDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := storage.SchemaVersion(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
}

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the notification worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	var csrfKey []byte
	if cfg.CSRFKey != "" {
		if csrfKey, err = cfg.CSRFKeyBytes(); err != nil {
			return err
		}
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)

	stores := &web.Stores{
		AthleteStore:  athleteStore.NewSQLiteStore(timedDB),
		InjuryStore:   injuryStore.NewSQLiteStore(timedDB),
		PhaseStore:    phaseStore.NewSQLiteStore(timedDB),
		ProgressStore: progressStore.NewSQLiteStore(timedDB),
		OutboxStore:   outboxStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()
	seeded, err := orchestrators.ExecuteSeedPhases(ctx, orchestrators.SeedPhasesDeps{PhaseStore: stores.PhaseStore})
	if err != nil {
		return fmt.Errorf("seed phases: %w", err)
	}
	if seeded > 0 {
		slog.Info("phase_catalog_seeded", "count", seeded)
	}

	var sender email.Sender
	if cfg.ResendKey != "" {
		sender = email.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = email.NewNoopSender()
		if cfg.IsProduction() && cfg.NotifyEmail != "" {
			slog.Warn("email_sender_configured", "provider", "noop", "detail", "SAGRA_RESEND_KEY is not set; notifications are logged, not delivered")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypePhaseNotification: &orchestrators.PhaseNotificationExecutor{
			Sender:   sender,
			Renderer: markdown.NewRenderer(),
			From:     cfg.EmailFrom,
			ReplyTo:  cfg.ReplyTo,
		},
	}, cfg.OutboxBaseDelay, cfg.OutboxMaxDelay)

	stopCh := make(chan struct{})
	defer close(stopCh)
	orchestrators.StartBackgroundWorker(processor, cfg.OutboxInterval, stopCh)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitInterval)
	limiter.StartSweeper(stopCh)

	handler := web.NewMux(stores, collector, web.Options{
		CSRFKey: csrfKey,
		CSRF: middleware.CSRFOptions{
			Secure:         cfg.IsProduction(),
			TrustedOrigins: cfg.TrustedOrigins,
		},
		Limiter:         limiter,
		SlowRequestMs:   cfg.SlowRequestMs,
		Location:        loc,
		NotifyEmail:     cfg.NotifyEmail,
		OutboxProcessor: processor,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		slog.Info("server_starting", "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion(), "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server_stopped")
	return nil
}

func scheduleCmd(configFile *string) *cobra.Command {
	var surgeryFlag, todayFlag, xlsxPath string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the rehabilitation plan for a surgery date using the default protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			surgery, err := time.Parse(time.DateOnly, surgeryFlag)
			if err != nil {
				return fmt.Errorf("--surgery-date: %w", err)
			}
			today := rehab.CivilDate(time.Now().In(loc))
			if todayFlag != "" {
				if today, err = time.Parse(time.DateOnly, todayFlag); err != nil {
					return fmt.Errorf("--today: %w", err)
				}
			}

			schedule, err := rehab.ComputeSchedule(surgery, phase.DefaultCatalog())
			if err != nil {
				return err
			}
			if err := printSchedule(cmd.OutOrStdout(), surgery, today, schedule); err != nil {
				return err
			}

			if xlsxPath == "" {
				return nil
			}
			plan := export.Plan{
				AthleteName:       "-",
				SurgeryDate:       surgery,
				DischargeForecast: rehab.DischargeForecast(surgery),
				PercentComplete:   rehab.PercentComplete(surgery, today),
				CurrentWeek:       rehab.CurrentWeek(surgery, today),
				Schedule:          schedule,
			}
			if current, ok := rehab.LocateCurrent(today, schedule); ok {
				plan.CurrentPhase = current.Phase.Name
			}
			data, err := export.PlanWorkbook(plan)
			if err != nil {
				return err
			}
			return os.WriteFile(xlsxPath, data, 0o644)
		},
	}
	cmd.Flags().StringVar(&surgeryFlag, "surgery-date", "", "surgery date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&todayFlag, "today", "", "reference date (YYYY-MM-DD, default: today in the configured timezone)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the plan as an XLSX workbook to this path")
	cmd.MarkFlagRequired("surgery-date")
	return cmd
}

func printSchedule(out io.Writer, surgery, today time.Time, schedule []rehab.ScheduledPhase) error {
	current, inPhase := rehab.LocateCurrent(today, schedule)

	fmt.Fprintf(out, "Cirurgia: %s   Previsão de alta: %s\n",
		surgery.Format(export.DisplayDateLayout), rehab.DischargeForecast(surgery).Format(export.DisplayDateLayout))
	fmt.Fprintf(out, "Hoje: %s   Dias: %d   Semana: %d   Progresso: %.0f%%\n\n",
		today.Format(export.DisplayDateLayout),
		rehab.DaysSinceSurgery(surgery, today),
		rehab.CurrentWeek(surgery, today),
		rehab.PercentComplete(surgery, today))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " \tFase\tInício\tFim\tDias\tAtividades Liberadas")
	for _, sp := range schedule {
		marker := " "
		if inPhase && sp.Phase.Name == current.Phase.Name {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", marker, sp.Phase.Name,
			sp.Start.Format(export.DisplayDateLayout), sp.End.Format(export.DisplayDateLayout),
			sp.DurationLabel(), strings.TrimSpace(sp.Phase.AllowedActivities))
	}
	return tw.Flush()
}
