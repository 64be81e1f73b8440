package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
)

var ErrMalformedEvent = errors.New("kafka: malformed cloud event")

// EventProjector consumes decoded event payloads.
type EventProjector interface {
	Project(ctx context.Context, eventID, name string, data []byte) error
}

type cloudEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// CloudEventHandler unwraps structured-mode CloudEvents written by the outbox
// worker and hands the data to a projector.
type CloudEventHandler struct {
	Projector EventProjector
}

func (h CloudEventHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	if msg == nil {
		return nil
	}
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if evt.ID == "" || evt.Type == "" {
		return ErrMalformedEvent
	}
	return h.Projector.Project(ctx, evt.ID, evt.Type, evt.Data)
}

var _ MessageHandler = CloudEventHandler{}
