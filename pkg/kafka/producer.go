package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/yanun0323/errors"

	"ledger/pkg/exception"
)

// Option configures a producer.
type Option struct {
	Brokers      []string      `json:"brokers"`
	Topic        string        `json:"topic"`
	BatchTimeout time.Duration `json:"batchTimeout"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes keyed messages to one topic and waits for all in-sync replicas.
type Producer struct {
	topic  string
	writer messageWriter
}

func NewProducer(opt Option) (*Producer, error) {
	if len(opt.Brokers) == 0 {
		return nil, exception.ErrEmptyBrokers
	}
	if opt.Topic == "" {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "kafka topic is empty")
	}
	if opt.BatchTimeout <= 0 {
		opt.BatchTimeout = 10 * time.Millisecond
	}

	return &Producer{
		topic: opt.Topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(opt.Brokers...),
			Topic:        opt.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: opt.BatchTimeout,
		},
	}, nil
}

// Send writes one message. Messages with the same key land on the same partition.
func (p *Producer) Send(ctx context.Context, key, value []byte, headers map[string]string) error {
	msg := kafka.Message{
		Key:   key,
		Value: value,
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "write message to %s", p.topic)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
