package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"dwelling/internal/domain/shared/events"
)

type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox buffers records for the current unit of work. Flush persists what
// was added so the worker can publish it after commit.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// ContextEncoder is preferred by RecordDomainEvents when an encoder can
// copy request scoped values, such as the trace context, into headers.
type ContextEncoder interface {
	EncodeContext(ctx context.Context, ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
	Source      string
	// Propagate, when set, writes context values into the record headers.
	Propagate func(ctx context.Context, headers map[string]string)
}

func (e JSONEventEncoder) EncodeContext(ctx context.Context, ev events.DomainEvent) (EventRecord, error) {
	rec, err := e.Encode(ev)
	if err != nil {
		return EventRecord{}, err
	}
	if e.Propagate != nil {
		e.Propagate(ctx, rec.Headers)
	}
	return rec, nil
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	headers := map[string]string{"content-type": "application/json"}
	if e.Source != "" {
		headers["source"] = e.Source
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    headers,
	}, nil
}

func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	ctxEncoder, withContext := encoder.(ContextEncoder)
	for _, ev := range evs {
		var (
			rec EventRecord
			err error
		)
		if withContext {
			rec, err = ctxEncoder.EncodeContext(ctx, ev)
		} else {
			rec, err = encoder.Encode(ev)
		}
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
