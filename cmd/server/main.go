package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"account-gateway/internal/audit"
	"account-gateway/internal/email"
	"account-gateway/internal/identity"
	"account-gateway/internal/platform/config"
	"account-gateway/internal/platform/httpserver"
	"account-gateway/internal/platform/logger"
	"account-gateway/internal/platform/metrics"
	redisplatform "account-gateway/internal/platform/redis"
	"account-gateway/internal/profile"
	"account-gateway/internal/registration/emaillock"
	"account-gateway/internal/registration/handler"
	"account-gateway/internal/registration/service"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	m := metrics.New()

	provider := identity.NewHTTPClient(identity.HTTPClientConfig{
		BaseURL:                  cfg.IdentityBaseURL,
		APIKey:                   cfg.IdentityAPIKey,
		VerificationContinueURL:  cfg.VerificationContinueURL,
		PasswordResetContinueURL: cfg.PasswordResetContinueURL,
	})

	var profiles profile.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Error("ping database", "error", err.Error())
			os.Exit(1)
		}
		if _, err := db.Exec(profile.Schema); err != nil {
			log.Error("apply profile schema", "error", err.Error())
			os.Exit(1)
		}
		profiles = profile.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory profile store")
		profiles = profile.NewMemoryStore()
	}

	var dispatcher email.Dispatcher
	if cfg.ResendAPIKey != "" {
		client, err := email.NewResendClient(email.ResendConfig{
			APIKey:        cfg.ResendAPIKey,
			From:          cfg.EmailFrom,
			ReplyTo:       cfg.ReplyTo,
			MessageStream: cfg.MessageStream,
		})
		if err != nil {
			log.Error("configure email dispatch", "error", err.Error())
			os.Exit(1)
		}
		dispatcher = client
	} else {
		log.Warn("RESEND_API_KEY not set, email dispatch is log-only")
		dispatcher = email.NewLogDispatcher(log)
	}

	var locks emaillock.Locker
	redisClient, err := redisplatform.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		locks = emaillock.NewRedisLocker(redisClient.Client, cfg.LockTTL)
	} else {
		log.Warn("REDIS_URL not set, registration lock is process-local")
		locks = emaillock.NewLocalLocker()
	}

	var auditor audit.Publisher = audit.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		kafka, err := audit.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.AuditTopic, log)
		if err != nil {
			log.Error("connect kafka", "error", err.Error())
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			kafka.Close(ctx)
		}()
		auditor = kafka
	}

	svc := service.New(provider, profiles, dispatcher, locks, auditor, log, m)

	router := chi.NewRouter()
	h := handler.New(svc, log, m, cfg.AdminPIN)
	h.Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting account-gateway", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
