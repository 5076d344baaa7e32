package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zerologlog "github.com/rs/zerolog/log"

	"github.com/dhinakarr/realtors-app-sub001/internal/config"
	"github.com/dhinakarr/realtors-app-sub001/internal/email"
	"github.com/dhinakarr/realtors-app-sub001/internal/handler"
	eventHandler "github.com/dhinakarr/realtors-app-sub001/internal/handler/event"
	healthHandler "github.com/dhinakarr/realtors-app-sub001/internal/handler/health"
	notificationHandler "github.com/dhinakarr/realtors-app-sub001/internal/handler/notification"
	"github.com/dhinakarr/realtors-app-sub001/internal/middleware"
	"github.com/dhinakarr/realtors-app-sub001/internal/repository/postgres"
	"github.com/dhinakarr/realtors-app-sub001/internal/router"
	"github.com/dhinakarr/realtors-app-sub001/internal/service/dispatch"
	eventService "github.com/dhinakarr/realtors-app-sub001/internal/service/event"
	notificationService "github.com/dhinakarr/realtors-app-sub001/internal/service/notification"
	"github.com/dhinakarr/realtors-app-sub001/internal/template"
	"github.com/dhinakarr/realtors-app-sub001/pkg/fcm"
	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
	redisbroker "github.com/dhinakarr/realtors-app-sub001/pkg/messaging/redis"
	"github.com/dhinakarr/realtors-app-sub001/pkg/metrics"
	"github.com/dhinakarr/realtors-app-sub001/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zerologlog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	notificationRepo := postgres.NewNotificationRepository(base)
	deviceRepo := postgres.NewDeviceTokenRepository(base)
	userRepo := postgres.NewUserRepository(base)

	m := metrics.NewMetrics("realtors", "dispatch")

	recorder := dispatch.NewRecorder(notificationRepo, deviceRepo, m, log)

	fcmClient, err := fcm.NewClient(fcm.Config{CredentialsFile: cfg.FCM.CredentialsFile}, log)
	if err != nil {
		log.Fatal(err, "failed to initialize FCM client")
	}

	renderer, err := template.NewRenderer()
	if err != nil {
		log.Fatal(err, "failed to parse email templates")
	}
	transport := email.NewSMTPTransport(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)

	resolver := dispatch.NewRecipientResolver(userRepo)
	registry := dispatch.DefaultRegistry(resolver)

	pool := worker.NewPool(worker.PoolConfig{
		Workers:   cfg.Dispatch.Workers,
		QueueSize: cfg.Dispatch.QueueSize,
	}, log)

	coordinator := dispatch.NewCoordinator(
		registry,
		[]dispatch.Sender{
			dispatch.NewPushSender(fcmClient, recorder, log),
			dispatch.NewEmailSender(renderer, transport, recorder, log),
		},
		pool,
		m,
		log,
	)

	zl := zerologlog.Logger
	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &zl)
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := coordinator.Run(runCtx, broker); err != nil {
			log.Error(err, "dispatch coordinator stopped")
		}
	}()

	notificationSvc := notificationService.NewService(notificationRepo, recorder, fcmClient, pool, log)
	emitter := eventService.NewEmitter(broker, log)

	if err := handler.RegisterValidations(); err != nil {
		log.Fatal(err, "failed to register request validations")
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	r := router.NewRouter(
		authMiddleware,
		notificationHandler.NewHandler(notificationSvc),
		eventHandler.NewHandler(emitter),
		healthHandler.NewHandler(db),
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORS:           middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "server shutdown failed")
	}

	cancel()
	pool.Stop()
	if err := broker.Close(); err != nil {
		log.Error(err, "broker close failed")
	}
}
