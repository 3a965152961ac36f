// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

type Producer struct {
	producer sarama.SyncProducer
	prefix   string
}

// NewProducer connects to brokers, retrying while they come up.
func NewProducer(ctx context.Context, brokers []string, prefix string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3

	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= 5; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			log.Printf("[events] kafka producer ready brokers=%v", brokers)
			return NewWithProducer(producer, prefix), nil
		}
		log.Printf("[events] waiting for kafka (%d/5): %v", i, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("kafka producer: %w", err)
}

func NewWithProducer(p sarama.SyncProducer, prefix string) *Producer {
	return &Producer{producer: p, prefix: prefix}
}

// Publish sends payload as JSON to topic, keyed so that every event of one
// order lands on the same partition.
func (p *Producer) Publish(_ context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.prefix + topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s: %w", msg.Topic, err)
	}
	log.Printf("[events] published %s key=%s partition=%d offset=%d", msg.Topic, key, partition, offset)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

// Nop drops every event. It stands in when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
