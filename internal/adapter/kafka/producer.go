package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/K-Gaydukov/marketplace/internal/usecase"
)

func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Net.DialTimeout = 5 * time.Second
	return sarama.NewSyncProducer(brokers, cfg)
}

// StatusProducer publishes order.status.changed events, keyed by order id
// so changes for the same order stay ordered within a partition.
type StatusProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewStatusProducer(producer sarama.SyncProducer, topic string) *StatusProducer {
	return &StatusProducer{producer: producer, topic: topic}
}

func (p *StatusProducer) PublishStatusChanged(_ context.Context, msg usecase.OrderStatusChangedMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(msg.OrderID, 10)),
		Value: sarama.ByteEncoder(body),
	})
	return err
}

var _ usecase.EventStream = (*StatusProducer)(nil)
