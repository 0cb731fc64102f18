package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventrequests/config"
	"eventrequests/internal/adapters/auth"
	"eventrequests/internal/adapters/email"
	httpDelivery "eventrequests/internal/delivery/http"
	"eventrequests/internal/delivery/http/controllers"
	"eventrequests/internal/delivery/http/middleware"
	"eventrequests/internal/delivery/ws"
	"eventrequests/internal/repository/postgres"
	"eventrequests/internal/services"
	"eventrequests/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// @title Event Requests API
// @version 1.0
// @description Requesters post event requests, organizers accept or reject them, and requesters select one organizer.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("failed to reach database: %v", err)
	}
	if err := postgres.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	logger.Info("database migrated")

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.Region,
			AccessKeyID:        cfg.Email.AccessKeyID,
			SecretAccessKey:    cfg.Email.SecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	eventRequestRepo := postgres.NewEventRequestRepository(db)
	userRepo := postgres.NewUserRepository(db)
	eventRequestService := services.NewEventRequestService(eventRequestRepo, userRepo, emailService, logger, cfg.ContextTimeout)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	hub := ws.NewHub(verifier, logger, cfg.AllowedOrigins)
	defer hub.Close()

	router := httpDelivery.NewRouter(
		controllers.NewEventRequestController(logger, eventRequestService, validation.New()),
		controllers.NewNotificationController(logger, hub),
		hub,
		middleware.RequireAuth(verifier, logger),
	)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
