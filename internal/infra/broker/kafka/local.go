package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

// LocalProducer hands published messages straight to a handler. It lets the
// outbox worker feed projections in process when no brokers are configured.
type LocalProducer struct {
	Handler MessageHandler
}

func (p LocalProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if p.Handler == nil {
		return nil
	}
	msg := &sarama.ConsumerMessage{Topic: topic, Key: []byte(key), Value: payload}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, &sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	return p.Handler.Handle(ctx, msg)
}
