package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/moonlight-dining/tableside/internal/config"
	"github.com/moonlight-dining/tableside/internal/events"
	"github.com/moonlight-dining/tableside/internal/server"
	"github.com/moonlight-dining/tableside/internal/store"
	"github.com/moonlight-dining/tableside/internal/ws"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg := config.Load(logger)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Wait for database to be ready
	for i := 0; i < 30; i++ {
		if err := db.Ping(); err == nil {
			logger.Info("Database connection established")
			break
		}
		logger.Info("Waiting for database...")
		time.Sleep(2 * time.Second)
	}

	st := store.NewPostgresStore(db, logger)
	if err := st.EnsureSchema(); err != nil {
		logger.WithError(err).Fatal("Failed to create tables")
	}
	if cfg.SeedData {
		if err := st.Seed(); err != nil {
			logger.WithError(err).Fatal("Failed to seed data")
		}
	}

	srv := server.New(st, logger)

	if cfg.KafkaBrokers != "" {
		producer, err := events.NewKafkaProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer producer.Close()
		srv.SetPublisher(producer)
	} else {
		logger.Warn("KAFKA_BROKERS not set, event publishing disabled")
	}

	hub := ws.NewHub(logger)
	go hub.Run()
	srv.SetBroadcaster(hub)

	router := srv.Router()
	router.HandleFunc("/ws", hub.HandleWebSocket)
	router.Use(server.LoggingMiddleware(logger))
	router.Use(server.CORSMiddleware(cfg.AllowedOrigin))

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting dine server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}
