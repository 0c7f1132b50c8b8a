package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"database/sql"

	"github.com/finwise/finance-service/internal/cache"
	"github.com/finwise/finance-service/internal/config"
	"github.com/finwise/finance-service/internal/events"
	"github.com/finwise/finance-service/internal/handler"
	"github.com/finwise/finance-service/internal/integrations/assistant"
	"github.com/finwise/finance-service/internal/integrations/rates"
	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/middleware"
	"github.com/finwise/finance-service/internal/reminder"
	"github.com/finwise/finance-service/internal/repository"
	"github.com/finwise/finance-service/internal/service"
	"github.com/finwise/finance-service/internal/storage"
	"github.com/finwise/finance-service/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := storage.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Optional Redis cache
	var c cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		c = cache.NewRedis(cfg.RedisAddr)
		logger.Infof("Using Redis cache at %s", cfg.RedisAddr)
	}

	// Optional AMQP payment events
	var pub events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to AMQP broker: %v", err)
		}
		defer amqpPub.Close()
		pub = amqpPub
		logger.Infof("Publishing payment events to exchange %s", cfg.AMQPExchange)
	}

	// Optional external assistant
	var asst assistant.Assistant = assistant.Stub{}
	if cfg.AssistantURL != "" {
		asst = assistant.NewClient(cfg)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	engine := ledger.NewEngine(repo, logger)
	sender := email.NewSender(cfg, logger)
	svc := service.NewService(repo, engine, c, pub, asst, sender, logger, cfg)
	h := handler.NewHandler(svc, logger)
	ratesHandler := handler.NewRatesHandler(rates.NewClient(cfg, logger))

	// Payment reminder job
	reminders := reminder.NewScheduler(cfg, repo, sender, logger)
	if err := reminders.Start(); err != nil {
		logger.Fatalf("Failed to start reminder scheduler: %v", err)
	}
	defer reminders.Stop()

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", h.Register).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	api.HandleFunc("/auth/reset-password", h.ResetPassword).Methods("POST")
	api.HandleFunc("/rates", ratesHandler.Rates).Methods("GET")

	// Protected routes
	authRouter := api.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/profile", h.Profile).Methods("GET")
	authRouter.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")

	authRouter.HandleFunc("/assets", h.CreateAsset).Methods("POST")
	authRouter.HandleFunc("/assets", h.ListAssets).Methods("GET")
	authRouter.HandleFunc("/assets/types", h.AssetTypes).Methods("GET")
	authRouter.HandleFunc("/assets/tentative", h.CreateTentativeAsset).Methods("POST")
	authRouter.HandleFunc("/assets/tentative", h.ListTentativeAssets).Methods("GET")
	authRouter.HandleFunc("/assets/{id:[0-9]+}", h.UpdateAsset).Methods("PUT")

	authRouter.HandleFunc("/liabilities", h.CreateLiability).Methods("POST")
	authRouter.HandleFunc("/liabilities", h.ListLiabilities).Methods("GET")
	authRouter.HandleFunc("/liabilities/types", h.LiabilityTypes).Methods("GET")
	authRouter.HandleFunc("/liabilities/{id:[0-9]+}", h.Liability).Methods("GET")
	authRouter.HandleFunc("/liabilities/{id:[0-9]+}", h.UpdateLiability).Methods("PUT")
	authRouter.HandleFunc("/liabilities/{id:[0-9]+}/pay", h.Pay).Methods("POST")

	authRouter.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	authRouter.HandleFunc("/recommendations", h.Recommendations).Methods("GET")

	authRouter.HandleFunc("/chat/sessions", h.CreateSession).Methods("POST")
	authRouter.HandleFunc("/chat/sessions/{id}", h.Session).Methods("GET")
	authRouter.HandleFunc("/chat/sessions/{id}/messages", h.Messages).Methods("GET")
	authRouter.HandleFunc("/chat/sessions/{id}/messages", h.SendMessage).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Forced shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
