package events

import (
	"context"
	"encoding/json"
	"strconv"

	"dm-service/internal/message"

	kafkago "github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafkago.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		Async:        false,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) MessageCreated(ctx context.Context, msg *message.Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	// Key by sender so one conversation side stays on one partition.
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(strconv.FormatUint(uint64(msg.Sender), 10)),
		Value: value,
		Time:  msg.CreatedAt,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
