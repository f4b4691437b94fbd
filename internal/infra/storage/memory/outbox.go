package memory

import (
	"context"
	"sync"

	"homestay/internal/app/outbox"
)

// Outbox buffers domain event records in memory until the publisher worker
// claims them. Flush is a no-op; the worker drives delivery.
type Outbox struct {
	mu      sync.Mutex
	pending []outbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(_ context.Context, record outbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(context.Context) error { return nil }

// Claim removes and returns up to max pending records. Claimed records are
// considered delivered; memory mode does not survive restarts anyway.
func (o *Outbox) Claim(_ context.Context, max int) ([]outbox.EventRecord, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.pending) == 0 {
		return nil, nil
	}
	n := len(o.pending)
	if max > 0 && max < n {
		n = max
	}
	claimed := make([]outbox.EventRecord, n)
	copy(claimed, o.pending[:n])
	o.pending = o.pending[n:]
	return claimed, nil
}

func (o *Outbox) MarkSent(context.Context, []string) error { return nil }
