package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/domain"
)

const auditTopic = "audit"

// AuditPublisher fans audit entries out to Kafka for downstream
// retention beyond the bounded local trail.
type AuditPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewAuditPublisher constructs a publisher on top of the shared producer.
func NewAuditPublisher(producer *Producer, logger *zap.Logger) *AuditPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditPublisher{producer: producer, logger: logger}
}

// PublishAuditEntry enqueues the entry on the audit topic keyed by actor,
// so one actor's entries stay ordered within a partition.
func (p *AuditPublisher) PublishAuditEntry(_ context.Context, entry domain.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.producer.TopicName(auditTopic),
		Key:   sarama.StringEncoder(entry.Actor),
		Value: sarama.ByteEncoder(payload),
	}

	return nil
}

// StubPublisher logs audit entries instead of publishing them; used when
// no brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs the logging stub.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubPublisher{logger: logger}
}

// PublishAuditEntry logs the entry at debug level.
func (p *StubPublisher) PublishAuditEntry(_ context.Context, entry domain.AuditEntry) error {
	p.logger.Debug("audit entry (stub publisher)",
		zap.String("actor", entry.Actor),
		zap.String("action", string(entry.Action)),
	)
	return nil
}
