package middleware

import (
	"context"
	"errors"
	"fmt"

	"dwelling/internal/app/commands"
	"dwelling/internal/app/uow"
)

// TxOptionsProvider picks transaction options per command. Nil means the
// zero options.
type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// Transaction gives the rest of the pipeline one unit of work, attached to
// the context, committed when the handler succeeds and rolled back
// otherwise. A context that already carries a unit joins it instead.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return DispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if _, joined := uow.From(ctx); joined {
				return next.Dispatch(ctx, cmd)
			}
			var opts uow.TxOptions
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			return inUnit(ctx, factory, opts, func(ctx context.Context) (any, error) {
				return next.Dispatch(ctx, cmd)
			})
		})
	}
}

func inUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions, fn func(context.Context) (any, error)) (res any, err error) {
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	ctx = uow.Attach(ctx, unit)
	defer func() {
		if err == nil {
			return
		}
		if rbErr := unit.Rollback(ctx); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if res, err = fn(ctx); err != nil {
		return nil, err
	}
	if err = unit.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}
