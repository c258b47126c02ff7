package queries

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrHandlerNotFound = errors.New("queries: no handler registered")
	ErrResultType      = errors.New("queries: unexpected result type")
	ErrNilBus          = errors.New("queries: nil bus")
)

// Query is a read request; it never changes state.
type Query interface {
	Key() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

type route func(ctx context.Context, query Query) (any, error)

type InMemoryBus struct {
	routes map[string]route
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{routes: make(map[string]route)}
}

func (b *InMemoryBus) Ask(ctx context.Context, query Query) (any, error) {
	r, ok := b.routes[query.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, query.Key())
	}
	return r(ctx, query)
}

func (b *InMemoryBus) Keys() []string {
	keys := make([]string, 0, len(b.routes))
	for k := range b.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register binds handler to the key of Q and panics on duplicates.
func Register[Q Query, R any](bus *InMemoryBus, handler Handler[Q, R]) {
	var zero Q
	key := zero.Key()
	if key == "" {
		panic("queries: query type has an empty key")
	}
	if _, dup := bus.routes[key]; dup {
		panic("queries: duplicate handler for " + key)
	}
	bus.routes[key] = func(ctx context.Context, query Query) (any, error) {
		return handler.Handle(ctx, query.(Q))
	}
}

func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T", ErrResultType, query.Key(), res)
	}
	return value, nil
}
