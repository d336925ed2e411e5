package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/moonlight-dining/tableside/internal/config"
	"github.com/moonlight-dining/tableside/internal/events"
	"github.com/sirupsen/logrus"
)

// kitchenHandler turns order events into kitchen ticket log lines.
type kitchenHandler struct {
	logger *logrus.Logger
}

func (h *kitchenHandler) HandleOrderCreated(event events.OrderCreatedEvent) error {
	h.logger.WithFields(logrus.Fields{
		"order_id":     event.OrderID,
		"table_number": event.TableNumber,
		"total_amount": event.TotalAmount,
	}).Info("New kitchen ticket")
	return nil
}

func (h *kitchenHandler) HandleStatusChanged(event events.OrderStatusChangedEvent) error {
	h.logger.WithFields(logrus.Fields{
		"order_id":   event.OrderID,
		"old_status": event.OldStatus,
		"new_status": event.NewStatus,
	}).Info("Ticket status changed")
	return nil
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load(logger)
	brokers := cfg.KafkaBrokers
	if brokers == "" {
		brokers = "localhost:9092"
	}

	consumer, err := events.NewKafkaConsumer(brokers, "kitchen-monitor-group", &kitchenHandler{logger: logger}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.WithError(err).Error("Consumer stopped")
		}
	}()

	logger.Info("Kitchen monitor started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down kitchen monitor...")
}
