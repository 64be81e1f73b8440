package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "travelnest/internal/app/outbox"
	"travelnest/internal/app/uow"
)

// Outbox buffers event records until the command pipeline flushes them. On
// flush each record is handed to Sink, which lets projections run in process
// when no broker is configured. Records added inside a memory unit of work
// only become visible when that unit commits.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
	Sink    func(ctx context.Context, record appoutbox.EventRecord) error
}

func NewOutbox(sink func(ctx context.Context, record appoutbox.EventRecord) error) *Outbox {
	return &Outbox{Sink: sink}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if unit, ok := uow.FromContext(ctx); ok {
		if mu, ok := unit.(*Unit); ok {
			return mu.stageEvent(o, record)
		}
	}
	o.append(record)
	return nil
}

func (o *Outbox) append(records ...appoutbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, records...)
}

// Flush delivers buffered records. Sink errors are joined and returned after
// every record had its turn; records are dropped either way.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()
	if o.Sink == nil {
		return nil
	}
	var errs []error
	for _, rec := range pending {
		if err := o.Sink(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pending returns a copy of records not yet flushed.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
