package repository

import (
	"context"

	domrepo "PopPredict/internal/domain/repository"
	pkgkafka "PopPredict/pkg/kafka"
)

// KafkaEvents publishes pipeline lifecycle events for the out-of-process
// training orchestrator.
type KafkaEvents struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaEvents(producer *pkgkafka.Producer, topic string) *KafkaEvents {
	return &KafkaEvents{producer: producer, topic: topic}
}

func (e *KafkaEvents) PublishDatasetReady(ctx context.Context, report map[string]interface{}) error {
	payload := map[string]interface{}{"event": "dataset.ready"}
	for k, v := range report {
		payload[k] = v
	}
	return e.producer.Publish(ctx, e.topic, []byte("dataset.ready"), payload)
}

func (e *KafkaEvents) Close() error {
	if e.producer != nil {
		return e.producer.Close()
	}
	return nil
}

var _ domrepo.Events = (*KafkaEvents)(nil)
