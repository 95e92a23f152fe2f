package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/models/events"
)

// Publisher writes committed balance changes to Kafka. Messages are keyed
// by account so one account's events stay on one partition, in order.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = events.TopicBalanceCommitted
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) Publish(topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{Value: data}
	if ev, ok := event.(events.BalanceCommitted); ok {
		msg.Key = []byte(ev.AccountID)
	}

	return p.writer.WriteMessages(context.Background(), msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
