package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher produces lifecycle events to a Kafka topic, fire-and-forget.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the given brokers. Returns an error when the
// client cannot be constructed; broker reachability is checked lazily by the
// producer.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.ProduceRequestTimeout(5*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// Emit produces one event keyed by email. Send failures are logged, never
// returned: audit must not block or fail the registration path.
func (p *KafkaPublisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "encode audit event", "kind", string(event.Kind), "error", err.Error())
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Email),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("produce audit event", "kind", string(event.Kind), "error", err.Error())
		}
	})
}

// Close flushes pending records and releases the client.
func (p *KafkaPublisher) Close(ctx context.Context) {
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Error("flush audit events", "error", err.Error())
	}
	p.client.Close()
}
