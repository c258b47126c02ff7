package middleware

import (
	"context"

	"dwelling/internal/app/commands"
	"dwelling/internal/app/queries"
)

type CommandMiddleware func(next commands.Bus) commands.Bus

type QueryMiddleware func(next queries.Bus) queries.Bus

// ChainCommands wraps base so that mws[0] sees a command first.
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	bus := base
	for i := len(mws) - 1; i >= 0; i-- {
		bus = mws[i](bus)
	}
	return bus
}

// ChainQueries wraps base so that mws[0] sees a query first.
func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	bus := base
	for i := len(mws) - 1; i >= 0; i-- {
		bus = mws[i](bus)
	}
	return bus
}

// DispatchFunc turns a function into a commands.Bus.
type DispatchFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f DispatchFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

// AskFunc turns a function into a queries.Bus.
type AskFunc func(ctx context.Context, query queries.Query) (any, error)

func (f AskFunc) Ask(ctx context.Context, query queries.Query) (any, error) {
	return f(ctx, query)
}
