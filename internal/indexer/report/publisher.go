package report

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/term-indexer/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/resilience"
)

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// CompletionEvent is the JSON payload of an index complete message.
type CompletionEvent struct {
	Type    string          `json:"type"`
	Summary indexer.Summary `json:"summary"`
}

const completionEventType = "index.complete"

// Publisher announces finished runs on Kafka, keyed by run id.
type Publisher struct {
	producer EventPublisher
	retry    resilience.RetryConfig
}

func NewPublisher(producer EventPublisher, retry resilience.RetryConfig) *Publisher {
	return &Publisher{producer: producer, retry: retry}
}

func (p *Publisher) Name() string {
	return "kafka"
}

func (p *Publisher) Report(ctx context.Context, summary indexer.Summary) error {
	event := kafka.Event{
		Key:   summary.RunID,
		Value: CompletionEvent{Type: completionEventType, Summary: summary},
	}
	return resilience.Retry(ctx, "publish-index-complete", p.retry, func(ctx context.Context) error {
		return p.producer.Publish(ctx, event)
	})
}
