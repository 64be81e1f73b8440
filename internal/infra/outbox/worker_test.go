package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	pending []*EventDocument
	sent    []string
	failed  []string
}

func (q *fakeQueue) Claim(context.Context, string) (*EventDocument, error) {
	if len(q.pending) == 0 {
		return nil, nil
	}
	doc := q.pending[0]
	q.pending = q.pending[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, _ time.Time, _ string) error {
	q.failed = append(q.failed, id)
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
}

type fakeProducer struct {
	out []published
	err error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, _ map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload})
	return nil
}

func TestDrainPublishesCloudEvents(t *testing.T) {
	at := time.Date(2025, time.October, 1, 10, 0, 0, 0, time.UTC)
	queue := &fakeQueue{pending: []*EventDocument{
		{ID: "evt-1", Name: "booking.confirmed", Aggregate: "b1", Payload: []byte(`{"booking_id":"b1"}`), OccurredAt: at},
		{ID: "evt-2", Name: "membership.activated", Aggregate: "u1", Payload: []byte(`{"user_id":"u1"}`), OccurredAt: at},
	}}
	producer := &fakeProducer{}
	w := &Worker{Store: queue, Producer: producer, TopicPrefix: "dev.", ID: "w1"}

	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sent)
	require.Equal(t, []string{"evt-1", "evt-2"}, queue.sent)
	require.Equal(t, "dev.booking.events.v1", producer.out[0].topic)
	require.Equal(t, "dev.membership.events.v1", producer.out[1].topic)
	require.Equal(t, "b1", producer.out[0].key)

	var evt struct {
		ID     string          `json:"id"`
		Type   string          `json:"type"`
		Source string          `json:"source"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(producer.out[0].payload, &evt))
	require.Equal(t, "evt-1", evt.ID)
	require.Equal(t, "booking.confirmed.v1", evt.Type)
	require.Equal(t, "app://travelnest", evt.Source)
	require.JSONEq(t, `{"booking_id":"b1"}`, string(evt.Data))
}

func TestDrainMarksFailures(t *testing.T) {
	queue := &fakeQueue{pending: []*EventDocument{{ID: "evt-1", Name: "booking.cancelled", Payload: []byte(`{}`)}}}
	w := &Worker{Store: queue, Producer: &fakeProducer{err: errors.New("broker down")}, Backoff: []time.Duration{time.Second}}

	sent, err := w.Drain(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)
	require.Equal(t, []string{"evt-1"}, queue.failed)
	require.Empty(t, queue.sent)
}

func TestDrainRejectsMalformedPayload(t *testing.T) {
	queue := &fakeQueue{pending: []*EventDocument{{ID: "evt-1", Name: "listing.created", Payload: []byte(`not json`)}}}
	w := &Worker{Store: queue, Producer: &fakeProducer{}}

	_, err := w.Drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"evt-1"}, queue.failed)
}
