package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	zerologlog "github.com/rs/zerolog/log"

	"github.com/dhinakarr/realtors-app-sub001/internal/config"
	"github.com/dhinakarr/realtors-app-sub001/internal/email"
	"github.com/dhinakarr/realtors-app-sub001/internal/repository/postgres"
	"github.com/dhinakarr/realtors-app-sub001/internal/service/dispatch"
	"github.com/dhinakarr/realtors-app-sub001/internal/template"
	"github.com/dhinakarr/realtors-app-sub001/pkg/fcm"
	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
	redisbroker "github.com/dhinakarr/realtors-app-sub001/pkg/messaging/redis"
	"github.com/dhinakarr/realtors-app-sub001/pkg/metrics"
	"github.com/dhinakarr/realtors-app-sub001/pkg/worker"
)

// Standalone dispatcher: consumes domain events from the broker and fans
// deliveries out, so notification load can run apart from the API process.
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

	m := metrics.NewMetrics("realtors", "dispatch_worker")
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

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := coordinator.Run(runCtx, broker); err != nil {
			log.Error(err, "dispatch coordinator stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	cancel()
	<-done
	pool.Stop()
	if err := broker.Close(); err != nil {
		log.Error(err, "broker close failed")
	}
}
