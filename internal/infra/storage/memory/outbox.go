package memory

import (
	"context"
	"sync"

	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/uow"
)

type commitHooks interface {
	AfterCommit(fn func()) error
}

// Outbox buffers records in process. Flush hands pending records to the sink
// (a logger in local runs) and clears them.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
	sink    func(ctx context.Context, rec appoutbox.EventRecord)
}

func NewOutbox(sink func(ctx context.Context, rec appoutbox.EventRecord)) *Outbox {
	return &Outbox{sink: sink}
}

// Add stages record on the ambient unit of work so it becomes pending only
// when that unit commits. Without a unit the record is pending at once.
func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if unit, ok := uow.FromContext(ctx); ok {
		if hooks, ok := unit.(commitHooks); ok {
			return hooks.AfterCommit(func() { o.append(record) })
		}
	}
	o.append(record)
	return nil
}

func (o *Outbox) append(record appoutbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()
	if o.sink == nil {
		return nil
	}
	for _, rec := range pending {
		o.sink(ctx, rec)
	}
	return nil
}

// Pending returns the records added since the last flush.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, len(o.records))
	copy(out, o.records)
	return out
}

var _ appoutbox.Outbox = (*Outbox)(nil)
