// Package notify delivers persisted notifications to the outside world over
// Kafka. Downstream consumers fan the events out to web sockets and e-mail.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "marketplace.notifications"

type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher from a comma-separated broker list.
// An empty list yields a disabled publisher whose Publish is a no-op, so the
// service can run without a broker in local setups.
func NewKafkaPublisher(brokersCSV, topic string) *KafkaPublisher {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &KafkaPublisher{}
	}

	if topic == "" {
		topic = DefaultTopic
	}

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) Enabled() bool {
	return p != nil && p.writer != nil
}

// Publish sends one notification keyed by recipient, so every user's events
// stay ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, n domain.Notification) error {
	if !p.Enabled() {
		return nil
	}

	payload, err := json.Marshal(notificationEvent{
		ID:             n.ID.String(),
		UserID:         n.UserID.String(),
		Role:           string(n.Role),
		Type:           string(n.Type),
		OrderRequestID: uuidString(n.OrderRequestID),
		OfferID:        uuidString(n.OfferID),
		Data:           n.Data,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.UserID.String()),
		Value: payload,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}

type notificationEvent struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Role           string         `json:"role"`
	Type           string         `json:"type"`
	OrderRequestID string         `json:"orderRequestId,omitempty"`
	OfferID        string         `json:"offerId,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
