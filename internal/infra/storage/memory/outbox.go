package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "dwelling/internal/app/outbox"
	infraoutbox "dwelling/internal/infra/outbox"
)

type outboxEntry struct {
	msg       infraoutbox.Message
	claimed   bool
	sent      bool
	nextTry   time.Time
	lastError string
}

// Outbox keeps event records in memory and serves them to the outbox worker.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &outboxEntry{msg: infraoutbox.Message{
		ID:         record.ID,
		Name:       record.Name,
		Payload:    append([]byte(nil), record.Payload...),
		OccurredAt: record.OccurredAt,
		Aggregate:  record.Aggregate,
		Headers:    record.Headers,
	}})
	return nil
}

// Flush is a no-op: records are visible to the worker as soon as they are added.
func (o *Outbox) Flush(ctx context.Context) error {
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for _, e := range o.entries {
		if e.sent || e.claimed || e.nextTry.After(now) {
			continue
		}
		e.claimed = true
		msg := e.msg
		return &msg, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.sent = true
		e.claimed = false
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.claimed = false
		e.nextTry = next
		e.lastError = errMsg
		e.msg.Attempts++
	}
	return nil
}

// Pending counts records not yet published.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, e := range o.entries {
		if !e.sent {
			n++
		}
	}
	return n
}

func (o *Outbox) find(id string) *outboxEntry {
	for _, e := range o.entries {
		if e.msg.ID == id {
			return e
		}
	}
	return nil
}

var _ appoutbox.Outbox = (*Outbox)(nil)
var _ infraoutbox.Source = (*Outbox)(nil)
