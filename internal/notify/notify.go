// Package notify delivers expiry notifications to the in-app alert list and
// to the platform push channel.
package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/erazemk/hsetracker/internal/expiry"
	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/store"
)

// Sink is the delivery interface shared with the expiry engine.
type Sink = expiry.Sink

// InApp persists notifications as in-app alerts.
type InApp struct {
	DB *sql.DB
}

// Send stores n in the notifications table.
func (s *InApp) Send(ctx context.Context, n expiry.Notification) error {
	return store.InsertNotification(ctx, s.DB, model.Notification{
		ID:        n.ID,
		WorkerID:  n.SubjectID,
		Equipment: n.Equipment,
		Threshold: n.Threshold.String(),
		Severity:  n.Status.Severity(),
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	})
}

// Event is the JSON payload published for the push gateway.
type Event struct {
	ID            string    `json:"id"`
	WorkerID      int64     `json:"worker_id"`
	Worker        string    `json:"worker"`
	Equipment     string    `json:"equipment"`
	Threshold     string    `json:"threshold"`
	Kind          string    `json:"kind"`
	DaysRemaining int       `json:"days_remaining"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEvent converts a notification to its wire form.
func NewEvent(n expiry.Notification) Event {
	return Event{
		ID:            n.ID,
		WorkerID:      n.SubjectID,
		Worker:        n.Subject,
		Equipment:     n.Equipment,
		Threshold:     n.Threshold.String(),
		Kind:          n.Status.Kind.String(),
		DaysRemaining: n.Status.DaysRemaining,
		Title:         n.Title,
		Body:          n.Body,
		CreatedAt:     n.CreatedAt,
	}
}

// Writer abstracts kafka.Writer for testing.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes platform notifications to a topic. Messages are keyed by
// worker so one worker's events stay ordered.
type Kafka struct {
	writer Writer
}

// NewKafkaWriter creates a synchronous writer for the given brokers and topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
}

// NewKafka creates a sink that publishes through w.
func NewKafka(w Writer) *Kafka {
	return &Kafka{writer: w}
}

// Send publishes n as a JSON event.
func (k *Kafka) Send(ctx context.Context, n expiry.Notification) error {
	value, err := json.Marshal(NewEvent(n))
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(n.SubjectID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "notification-id", Value: []byte(n.ID)},
			{Key: "threshold", Value: []byte(n.Threshold.String())},
		},
		Time: n.CreatedAt,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing notification: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}

// Log writes platform notifications to a logger. It is used when no broker
// is configured.
type Log struct {
	Logger *slog.Logger
}

// Send logs n.
func (l *Log) Send(ctx context.Context, n expiry.Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "push notification",
		"id", n.ID,
		"worker", n.Subject,
		"equipment", n.Equipment,
		"threshold", n.Threshold.String(),
		"title", n.Title,
		"body", n.Body,
	)
	return nil
}
