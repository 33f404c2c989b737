package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/donor-crm/internal/config"
	"github.com/xavierca1/donor-crm/internal/infra/database"
	"github.com/xavierca1/donor-crm/internal/infra/http/handlers"
	"github.com/xavierca1/donor-crm/internal/infra/http/middleware"
	"github.com/xavierca1/donor-crm/internal/infra/integration/llm"
	"github.com/xavierca1/donor-crm/internal/infra/integration/resend"
	"github.com/xavierca1/donor-crm/internal/infra/integration/zoom"
	"github.com/xavierca1/donor-crm/internal/infra/mail"
	"github.com/xavierca1/donor-crm/internal/infra/queue"
	"github.com/xavierca1/donor-crm/internal/infra/worker"
	"github.com/xavierca1/donor-crm/internal/logger"
	"github.com/xavierca1/donor-crm/internal/security"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	clock := usecase.SystemClock{}
	metrics := middleware.DomainMetrics{}

	// 1. Repositories
	orgRepo := database.NewOrganizationRepository(db)
	userRepo := database.NewUserRepository(db)
	attemptRepo := database.NewLoginAttemptRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	donorRepo := database.NewDonorRepository(db)
	donationRepo := database.NewDonationRepository(db)
	commRepo := database.NewCommunicationRepository(db)
	leadRepo := database.NewLeadRepository(db)

	cache := usecase.NewInsightCache(cfg.InsightsCacheTTL(), clock)
	reconciler := usecase.NewDonorReconciler(donorRepo, donationRepo, cache, log)

	g, gctx := errgroup.WithContext(ctx)

	// 2. Broker (optional)
	var (
		publisher usecase.ReconcilePublisher
		broker    handlers.BrokerConn
	)
	if cfg.RabbitMQURL != "" {
		rmq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rmq.Close()

		consumeCh, err := rmq.Conn.Channel()
		if err != nil {
			return fmt.Errorf("rabbitmq: consumer channel: %w", err)
		}
		publisher = queue.NewProducer(rmq.Ch)
		broker = rmq.Conn

		reconcileWorker := queue.NewWorker(consumeCh, reconciler, log)
		g.Go(func() error { return reconcileWorker.Start(gctx, queue.QueueName) })
	} else {
		log.Warn("RABBITMQ_URL not set; failed recomputes are left to the reconciliation worker")
	}

	sweeper := worker.NewReconciliationWorker(reconciler, cfg.ReconcileInterval(), log)
	g.Go(func() error {
		sweeper.Start(gctx)
		return nil
	})

	// 3. Integrations
	sender := emailSender(cfg, log)

	var drafter usecase.ContentDrafter
	if cfg.GeminiAPIKey != "" {
		d, err := llm.NewDrafter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		drafter = d
	}

	var meetings usecase.MeetingScheduler
	if cfg.ZoomEnabled() {
		meetings = zoom.NewClient(zoom.Config{
			AccountID:    cfg.ZoomAccountID,
			ClientID:     cfg.ZoomClientID,
			ClientSecret: cfg.ZoomClientSecret,
			BaseURL:      cfg.ZoomBaseURL,
			TokenURL:     cfg.ZoomTokenURL,
		})
	}

	tokens, err := security.NewTokenProvider(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	// 4. Use cases
	authSvc := usecase.NewAuthService(orgRepo, userRepo, sessionRepo, attemptRepo, tokens, security.NewHasher(cfg.BcryptCost), usecase.AuthConfig{
		RefreshTTL:      cfg.RefreshTTL(),
		MaxSessionAge:   cfg.MaxSessionAge(),
		MaxFailures:     cfg.LoginMaxFails,
		LockoutWindow:   cfg.LockoutWindow(),
		DefaultTimezone: cfg.DefaultTZ,
	}, clock, log)
	donorSvc := usecase.NewDonorService(donorRepo, commRepo, clock, log)
	ledger := usecase.NewDonationLedger(donationRepo, orgRepo, clock)
	lapsed := usecase.NewLapsedDonors(donorRepo, donationRepo, orgRepo, clock)
	summary := usecase.NewDonationSummary(ledger, lapsed)
	insights := usecase.NewDonorInsights(donorRepo, donationRepo, commRepo, orgRepo, cache, clock)
	recordDonation := usecase.NewRecordDonationUseCase(donorRepo, donationRepo, orgRepo, reconciler, cache, publisher, metrics, clock, log)
	recordComm := usecase.NewRecordCommunicationUseCase(donorRepo, commRepo, orgRepo, sender, drafter, meetings, cache, metrics, clock, log)

	var notifier usecase.LeadNotifier
	if sender != nil {
		notifier = mail.NewLeadWelcomeNotifier(sender, "Donor CRM")
	}
	captureLead := usecase.NewCaptureLeadUseCase(leadRepo, notifier, log)

	// 5. HTTP
	limiter := handlers.NewRateLimiter(10, time.Minute)
	g.Go(func() error {
		limiter.Cleanup(gctx, 10*time.Minute)
		return nil
	})

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins(),
		Access:         authSvc,
		Logger:         log,
		Health:         handlers.NewHealthHandler(db, broker, version),
		Auth:           handlers.NewAuthHandler(authSvc, log),
		Leads:          handlers.NewLeadHandler(captureLead, limiter, log),
		Donors:         handlers.NewDonorHandler(donorSvc, insights, lapsed, reconciler, log),
		Donations:      handlers.NewDonationHandler(ledger, summary, recordDonation, log),
		Communication:  handlers.NewCommunicationHandler(recordComm, log),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		captureLead.Wait()
		return err
	})

	return g.Wait()
}

// emailSender prefers the Resend API, falls back to SMTP, and returns nil when
// neither is configured.
func emailSender(cfg *config.Config, log *zap.Logger) usecase.EmailSender {
	switch {
	case cfg.ResendAPIKey != "":
		log.Info("email via resend")
		return resend.NewClient(cfg.ResendAPIKey, cfg.ResendBaseURL, cfg.MailFrom)
	case cfg.MailHost != "":
		log.Info("email via smtp", zap.String("host", cfg.MailHost))
		return mail.NewSMTPSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	default:
		log.Warn("no email provider configured; outbound email will be marked FAILED")
		return nil
	}
}
