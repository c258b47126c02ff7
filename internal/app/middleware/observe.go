package middleware

import (
	"context"
	"time"

	"dwelling/internal/app/commands"
)

// CommandObserver is told about every dispatched command once it finishes.
type CommandObserver func(ctx context.Context, key string, elapsed time.Duration, err error)

// Observe reports the outcome of each command to the observers. It does not
// change the result.
func Observe(observers ...CommandObserver) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return DispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			result, err := next.Dispatch(ctx, cmd)
			elapsed := time.Since(start)
			for _, obs := range observers {
				if obs != nil {
					obs(ctx, cmd.Key(), elapsed, err)
				}
			}
			return result, err
		})
	}
}
