package middleware

import (
	"context"
	"strings"

	"dwelling/internal/app/commands"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

type AuthorizerFunc func(ctx context.Context, message any) error

func (f AuthorizerFunc) Authorize(ctx context.Context, message any) error {
	return f(ctx, message)
}

// Authenticated is implemented by messages that may only be sent on behalf
// of a resolved user.
type Authenticated interface {
	Requester() string
}

// RequireRequester rejects Authenticated messages that carry no requester,
// returning denied. Other messages pass through.
func RequireRequester(denied error) Authorizer {
	return AuthorizerFunc(func(_ context.Context, message any) error {
		authn, ok := message.(Authenticated)
		if !ok {
			return nil
		}
		if strings.TrimSpace(authn.Requester()) == "" {
			return denied
		}
		return nil
	})
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		return DispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}
