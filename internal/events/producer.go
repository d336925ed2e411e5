package events

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/moonlight-dining/tableside/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	OrderCreatedTopic       = "order.created"
	OrderStatusChangedTopic = "order.status_changed"
)

type OrderCreatedEvent struct {
	EventID     string    `json:"event_id"`
	OrderID     int64     `json:"order_id"`
	TableNumber int       `json:"table_number"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	EventTime   time.Time `json:"event_time"`
}

type OrderStatusChangedEvent struct {
	EventID   string        `json:"event_id"`
	OrderID   int64         `json:"order_id"`
	OldStatus models.Status `json:"old_status"`
	NewStatus models.Status `json:"new_status"`
	EventTime time.Time     `json:"event_time"`
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	logger   *logrus.Logger
}

func NewKafkaProducer(brokers string, logger *logrus.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(strings.Split(brokers, ","), config)
	if err != nil {
		return nil, err
	}

	return &KafkaProducer{
		producer: producer,
		logger:   logger,
	}, nil
}

func (p *KafkaProducer) PublishOrderCreated(order *models.Order) error {
	event := OrderCreatedEvent{
		EventID:     uuid.New().String(),
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
		EventTime:   time.Now(),
	}
	return p.publish(OrderCreatedTopic, event.OrderID, event)
}

func (p *KafkaProducer) PublishStatusChanged(orderID int64, oldStatus, newStatus models.Status) error {
	event := OrderStatusChangedEvent{
		EventID:   uuid.New().String(),
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		EventTime: time.Now(),
	}
	return p.publish(OrderStatusChangedTopic, event.OrderID, event)
}

func (p *KafkaProducer) publish(topic string, orderID int64, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(orderID, 10)),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithField("topic", topic).Error("Failed to send message to Kafka")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"order_id":  orderID,
	}).Info("Event published to Kafka")

	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
