package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pharmacy-site/pkg/api"
	"pharmacy-site/pkg/clients/email"
	"pharmacy-site/pkg/clients/pharmacy"
	"pharmacy-site/pkg/clients/postgres"
	"pharmacy-site/pkg/clients/supabase"
	"pharmacy-site/pkg/clients/twilio"
	"pharmacy-site/pkg/config"
	"pharmacy-site/pkg/forms"
	"pharmacy-site/pkg/logging"
	"pharmacy-site/pkg/middleware"
	"pharmacy-site/pkg/notify"
	"pharmacy-site/pkg/services"
	"pharmacy-site/pkg/store/waitlist"
)

const shutdownTimeout = 10 * time.Second

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	// Initialize configuration
	cfg := config.LoadConfig()

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, "pharmacy-site")
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	now := func() time.Time { return time.Now().In(cfg.Location) }

	// Initialize API clients
	var records services.RecordStore
	switch cfg.BackendDriver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		records = postgres.NewClient(db, logger)
	default:
		if cfg.SupabaseURL == "" || cfg.SupabaseAPIKey == "" {
			logger.Error("backend not configured", zap.Strings("missing", []string{"SUPABASE_URL", "SUPABASE_ANON_KEY"}))
		}
		records = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAPIKey, cfg.BackendTimeout, logger)
	}

	pharmacyClient := pharmacy.NewClient(cfg.Pharmacy, logger, now)
	if missing := cfg.Pharmacy.MissingForRefill(); len(missing) > 0 && cfg.Pharmacy.Destination == config.DestinationPharmacyAPI {
		logger.Warn("refill submissions will fail until configured", zap.Strings("missing", missing))
	}

	waitlistStore, closeStore, err := waitlist.Open(ctx, cfg.WaitlistRedisAddr, cfg.WaitlistRedisPass, cfg.WaitlistDBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	mail := email.NewNoopSender(logger)
	if cfg.ResendAPIKey != "" {
		mail = email.NewResendSender(cfg.ResendAPIKey, cfg.NotifyFrom, logger)
	}
	var sms twilio.Client
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		sms = twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	}
	notifier := notify.New(mail, sms, cfg.NotifyStaffEmail, logger)

	// Initialize services
	submissionService := services.NewSubmissionService(
		records,
		pharmacyClient,
		waitlistStore,
		notifier,
		cfg,
		logger,
		now,
	)
	sessions := forms.NewSessions(cfg.ModalResetDelay)
	services.RegisterForms(sessions, submissionService, waitlistStore, now, logger)

	// Gin mode comes from GIN_MODE
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register routes
	api.NewHandlers(sessions, logger).RegisterRoutes(router)

	var wrap []func(http.Handler) http.Handler
	if cfg.CSRFAuthKey != "" {
		if len(cfg.CSRFAuthKey) != 32 {
			return errors.New("CSRF_AUTH_KEY must be 32 bytes")
		}
		wrap = append(wrap, middleware.CSRF([]byte(cfg.CSRFAuthKey), cfg.CSRFSecure, cfg.AllowedOrigins))
	}
	handler := middleware.Chain(router, wrap...)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("backend", cfg.BackendDriver),
			zap.String("pharmacy_destination", cfg.Pharmacy.Destination))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
