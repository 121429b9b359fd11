// Package kafka publishes audit events to a Kafka topic via franz-go. The
// topic is the durable trail; consumers materialize it for compliance
// queries out of process.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "ember/pkg/platform/audit"
)

const defaultTopic = "ember.audit.tracing"

// Store implements audit.Store by producing one JSON record per event,
// keyed by user id so per-user history stays ordered within a partition.
type Store struct {
	client *kgo.Client
	topic  string
}

// New connects a producer to the given brokers.
func New(brokers []string, topic string) (*Store, error) {
	if topic == "" {
		topic = defaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Store{client: client, topic: topic}, nil
}

type record struct {
	Action         string `json:"action"`
	Timestamp      string `json:"timestamp"`
	UserID         string `json:"user_id,omitempty"`
	ReportID       string `json:"report_id,omitempty"`
	AppNotified    int    `json:"app_notified,omitempty"`
	SMSSent        int    `json:"sms_sent,omitempty"`
	ManualRequired int    `json:"manual_required,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}

// Append produces the event synchronously; the caller is the audit worker,
// so backpressure lands on the inbox channel rather than on request paths.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(record{
		Action:         string(event.Action),
		Timestamp:      event.Timestamp.Format(time.RFC3339Nano),
		UserID:         event.UserID,
		ReportID:       event.ReportID,
		AppNotified:    event.AppNotified,
		SMSSent:        event.SMSSent,
		ManualRequired: event.ManualRequired,
		RequestID:      event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	rec := &kgo.Record{Topic: s.topic, Key: []byte(event.UserID), Value: payload}
	if err := s.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce audit record: %w", err)
	}
	return nil
}

// Close flushes and shuts down the producer.
func (s *Store) Close() {
	s.client.Close()
}
