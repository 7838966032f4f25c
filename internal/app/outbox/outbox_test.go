package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/events"
)

type sampleEvent struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

func (e sampleEvent) EventName() string     { return "sample.happened" }
func (e sampleEvent) AggregateID() string   { return e.ID }
func (e sampleEvent) OccurredAt() time.Time { return e.At }

type sliceOutbox struct {
	records []EventRecord
	err     error
}

func (o *sliceOutbox) Add(ctx context.Context, rec EventRecord) error {
	if o.err != nil {
		return o.err
	}
	o.records = append(o.records, rec)
	return nil
}

func (o *sliceOutbox) Flush(context.Context) error { return nil }

func TestJSONEventEncoder(t *testing.T) {
	at := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	enc := JSONEventEncoder{
		IDGenerator: func() string { return "evt-1" },
		Headers: func(context.Context) map[string]string {
			return map[string]string{"x-request-id": "req-1"}
		},
	}
	rec, err := enc.Encode(context.Background(), sampleEvent{ID: "agg-1", At: at})
	require.NoError(t, err)
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "sample.happened", rec.Name)
	assert.Equal(t, "agg-1", rec.Aggregate)
	assert.Equal(t, at, rec.OccurredAt)
	assert.Equal(t, "req-1", rec.Headers["x-request-id"])

	var decoded sampleEvent
	require.NoError(t, json.Unmarshal(rec.Payload, &decoded))
	assert.Equal(t, "agg-1", decoded.ID)
}

func TestRecordDomainEvents(t *testing.T) {
	box := &sliceOutbox{}
	evs := []events.DomainEvent{sampleEvent{ID: "a"}, sampleEvent{ID: "b"}}
	require.NoError(t, RecordDomainEvents(context.Background(), box, nil, evs))
	require.Len(t, box.records, 2)
	assert.Equal(t, "a", box.records[0].Aggregate)
	assert.NotEmpty(t, box.records[0].ID)

	require.NoError(t, RecordDomainEvents(context.Background(), nil, nil, evs))

	box.err = errors.New("full")
	require.EqualError(t, RecordDomainEvents(context.Background(), box, nil, evs), "full")
}
