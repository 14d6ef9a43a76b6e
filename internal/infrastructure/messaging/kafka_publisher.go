// Package messaging publica los eventos de inventario hacia Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
)

var _ inventory.EventPublisher = (*KafkaPublisher)(nil)

// messageWriter lo que se usa de *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe cada evento como un mensaje JSON con clave = id del documento,
// así los eventos de un mismo ajuste o traslado quedan ordenados en la misma partición.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafkaPublisher crea el writer hacia topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}
	return &KafkaPublisher{writer: writer, timeout: 5 * time.Second}
}

// Publish serializa y escribe el evento. El timeout acota la espera por el broker.
func (p *KafkaPublisher) Publish(ctx context.Context, ev inventory.Event) error {
	msg, err := toMessage(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("escribir evento %s en kafka: %w", ev.Type, err)
	}
	return nil
}

// Close vacía los lotes pendientes y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(ev inventory.Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serializar evento %s: %w", ev.Type, err)
	}
	return kafka.Message{
		Key:   []byte(ev.AggregateID),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "event-id", Value: []byte(ev.ID)},
		},
	}, nil
}
