package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrHandlerNotFound = errors.New("commands: no handler registered")
	ErrResultType      = errors.New("commands: unexpected result type")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Command is a write intent. Its Key routes it to exactly one handler, so it
// must not depend on field values.
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// Bus is what middleware wraps and HTTP handlers dispatch into.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

type route func(ctx context.Context, cmd Command) (any, error)

// InMemoryBus routes by key. Registration happens at startup; dispatching is
// safe from any goroutine afterwards.
type InMemoryBus struct {
	routes map[string]route
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{routes: make(map[string]route)}
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	r, ok := b.routes[cmd.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
	}
	return r(ctx, cmd)
}

// Keys lists registered command keys in order.
func (b *InMemoryBus) Keys() []string {
	keys := make([]string, 0, len(b.routes))
	for k := range b.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register binds handler to the key of C. Registering a key twice panics.
func Register[C Command, R any](bus *InMemoryBus, handler Handler[C, R]) {
	var zero C
	key := zero.Key()
	if key == "" {
		panic("commands: command type has an empty key")
	}
	if _, dup := bus.routes[key]; dup {
		panic("commands: duplicate handler for " + key)
	}
	bus.routes[key] = func(ctx context.Context, cmd Command) (any, error) {
		return handler.Handle(ctx, cmd.(C))
	}
}

// Dispatch sends cmd through bus and asserts the result. A nil result
// without error yields the zero R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T", ErrResultType, cmd.Key(), res)
	}
	return value, nil
}
