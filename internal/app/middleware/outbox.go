package middleware

import (
	"context"
	"fmt"

	"dwelling/internal/app/commands"
	"dwelling/internal/app/outbox"
)

// OutboxFlush hands committed records over to publication. It belongs
// outside Transaction: by the time it runs, the unit of work that wrote the
// records has committed. A failed command flushes nothing.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return DispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, fmt.Errorf("outbox flush after %s: %w", cmd.Key(), err)
			}
			return res, nil
		})
	}
}
