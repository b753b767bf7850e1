// Package audit emits security-relevant events to a Kafka topic. Emission is
// best-effort: the request path is never failed or blocked on sink errors.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/octanews/authcore/internal/config"
	"github.com/octanews/authcore/internal/domain/service"
	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/logger"
)

// Event is the wire form of an audit record.
type Event struct {
	Type      constants.AuditEventType `json:"type"`
	Subject   string                   `json:"subject,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
	Detail    map[string]interface{}   `json:"detail,omitempty"`
}

type kafkaSink struct {
	writer *kafka.Writer
	log    logger.Logger
}

// NewKafkaSink creates an AuditSink publishing to the configured topic.
func NewKafkaSink(cfg *config.AuditConfig, log logger.Logger) service.AuditSink {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 5 * time.Second,
		BatchTimeout: 100 * time.Millisecond,
	}
	return &kafkaSink{writer: writer, log: log.WithComponent("audit")}
}

// Emit publishes the event keyed by subject. Failures are logged and
// swallowed so an unreachable broker cannot take down authentication.
func (s *kafkaSink) Emit(ctx context.Context, eventType constants.AuditEventType, subject string, detail map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error(ctx, "failed to marshal audit event", err)
		return
	}

	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(subject),
		Value: payload,
	}); err != nil {
		s.log.Error(ctx, "failed to publish audit event", err,
			logger.String("type", string(eventType)))
	}
}

func (s *kafkaSink) Close() error {
	return s.writer.Close()
}

// nopSink discards events. Used when the audit pipeline is disabled.
type nopSink struct{}

// NewNopSink returns an AuditSink that discards everything.
func NewNopSink() service.AuditSink { return nopSink{} }

func (nopSink) Emit(context.Context, constants.AuditEventType, string, map[string]interface{}) {}

func (nopSink) Close() error { return nil }
