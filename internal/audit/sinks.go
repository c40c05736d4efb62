package audit

import (
	"context"
	"digital-storefront/internal/model"
	"digital-storefront/internal/repository"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/datatypes"
)

type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, e Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"event_id", e.ID,
		"kind", e.Kind,
		"order_id", e.OrderID,
		"product_id", e.ProductID,
		"actor", e.Actor,
		"metadata", e.Metadata,
		"occurred_at", e.OccurredAt,
	)
	return nil
}

func (s *LogSink) Close() error { return nil }

// DBSink appends events to the audit_events table.
type DBSink struct {
	repo repository.AuditEventRepository
}

func NewDBSink(repo repository.AuditEventRepository) *DBSink {
	return &DBSink{repo: repo}
}

func (s *DBSink) Write(ctx context.Context, e Event) error {
	var metadata datatypes.JSON
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
		metadata = datatypes.JSON(raw)
	}

	return s.repo.Append(ctx, &model.AuditEvent{
		EventID:    e.ID,
		Kind:       string(e.Kind),
		OrderID:    e.OrderID,
		ProductID:  e.ProductID,
		Actor:      e.Actor,
		Metadata:   metadata,
		OccurredAt: e.OccurredAt,
	})
}

func (s *DBSink) Close() error { return nil }

// KafkaSink publishes events as JSON, keyed by order id so one order's
// events land on one partition.
type KafkaSink struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka audit sink requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka audit sink requires a topic")
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

func (s *KafkaSink) Write(ctx context.Context, e Event) error {
	msg, err := kafkaMessage(s.topic, e)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, msg)
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func kafkaMessage(topic string, e Event) (kafka.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal audit event: %w", err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(e.OrderID),
		Value: payload,
		Time:  e.OccurredAt,
	}, nil
}

// RedisSink appends events to a capped stream.
type RedisSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	return &RedisSink{client: client, stream: stream, maxLen: 100000}
}

func (s *RedisSink) Write(ctx context.Context, e Event) error {
	values, err := streamValues(e)
	if err != nil {
		return err
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: values,
	}).Err()
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}

func streamValues(e Event) (map[string]interface{}, error) {
	metadata := "{}"
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal audit metadata: %w", err)
		}
		metadata = string(raw)
	}

	return map[string]interface{}{
		"id":          e.ID,
		"kind":        string(e.Kind),
		"order_id":    e.OrderID,
		"product_id":  e.ProductID,
		"actor":       e.Actor,
		"metadata":    metadata,
		"occurred_at": e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}, nil
}
