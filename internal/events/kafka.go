package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

// KafkaPublisher writes events as JSON to a single topic. The writer is
// created once at startup and closed at shutdown; it is never a global.
type KafkaPublisher struct {
	writer *kafkaGo.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafkaGo.Writer{
			Addr:         kafkaGo.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkaGo.LeastBytes{},
			RequiredAcks: kafkaGo.RequireOne,
			Async:        false,
		},
	}
}

// Emit publishes in a goroutine with its own timeout so the triggering
// operation never waits on the broker. Failures are logged and dropped.
func (p *KafkaPublisher) Emit(_ context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("[events] marshal %s: %v", e.EventType, err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := p.writer.WriteMessages(ctx, kafkaGo.Message{
			Key:   []byte(e.EventType),
			Value: payload,
		})
		if err != nil {
			log.Printf("[events] publish %s: %v", e.EventType, err)
		}
	}()
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
