package repository

import (
	"context"

	"SwingArrow/internal/domain/models"
	"SwingArrow/internal/domain/repository"
	pkgkafka "SwingArrow/pkg/kafka"
)

// eventProducer is the part of pkg/kafka.Producer the publisher needs.
type eventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaScanPublisher implements ScanPublisher for Kafka.
type KafkaScanPublisher struct {
	producer   eventProducer
	scanTopic  string
	trendTopic string
}

var _ repository.ScanPublisher = (*KafkaScanPublisher)(nil)

// NewKafkaScanPublisher creates Kafka publisher. Each row of a batch becomes
// one message keyed by symbol, so per-symbol ordering holds with a hash
// balancer.
func NewKafkaScanPublisher(producer eventProducer, scanTopic, trendTopic string) *KafkaScanPublisher {
	return &KafkaScanPublisher{producer: producer, scanTopic: scanTopic, trendTopic: trendTopic}
}

type scanRowEvent struct {
	BatchID     string         `json:"batchId"`
	Benchmark   string         `json:"benchmark"`
	GeneratedAt int64          `json:"generatedAt"`
	Row         models.ScanRow `json:"row"`
}

func (p *KafkaScanPublisher) PublishScan(ctx context.Context, batch models.ScanBatch) error {
	if len(batch.Rows) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(batch.Rows))
	for i, r := range batch.Rows {
		msgs[i] = pkgkafka.Message{
			Key: []byte(r.Symbol),
			Value: scanRowEvent{
				BatchID:     batch.ID,
				Benchmark:   batch.Benchmark,
				GeneratedAt: batch.GeneratedAt.Unix(),
				Row:         r,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.scanTopic, msgs)
}

func (p *KafkaScanPublisher) PublishTrend(ctx context.Context, state models.TrendState) error {
	return p.producer.Publish(ctx, p.trendTopic, []byte(state.Benchmark), state)
}

func (p *KafkaScanPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
