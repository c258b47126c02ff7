package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dwelling/internal/app/commands"
)

var ErrIdempotencyKeyReused = errors.New("middleware: idempotency key reused with a different request")

// IdempotentCommand is a command whose successful result may be replayed.
// ResultPrototype returns a pointer of the handler's result type.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

// IdempotencyRecord is a stored success. Fingerprint identifies the request
// that produced it; an empty fingerprint matches any request.
type IdempotencyRecord struct {
	Key         string
	Fingerprint string
	Payload     []byte
	OccurredAt  time.Time
}

// IdempotencyStore keeps results of successful commands. Save on an existing
// key keeps the first record.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

// Idempotency replays the stored result of a command that already succeeded
// under the same key. Failures are not stored, so a retry after a conflict or
// an outage runs the command again. Reusing a key for a different request
// fails with ErrIdempotencyKeyReused. A store failure after the command
// succeeded is logged and the result returned, since the command's effects
// are already committed.
func Idempotency(store IdempotencyStore, codec ResultCodec, logger *slog.Logger) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return DispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idem, ok := cmd.(IdempotentCommand)
			if !ok || idem.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := cmd.Key() + ":" + idem.IdempotencyKey()
			fingerprint, err := fingerprintOf(codec, cmd)
			if err != nil {
				return nil, err
			}

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("idempotency lookup: %w", err)
			}
			if found {
				return replay(codec, idem, rec, fingerprint)
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			rec = IdempotencyRecord{Key: key, Fingerprint: fingerprint, OccurredAt: time.Now().UTC()}
			if result != nil {
				if rec.Payload, err = codec.Encode(result); err != nil {
					logger.WarnContext(ctx, "idempotency result not stored", "key", key, "error", err)
					return result, nil
				}
			}
			if err := store.Save(ctx, rec); err != nil {
				logger.WarnContext(ctx, "idempotency result not stored", "key", key, "error", err)
			}
			return result, nil
		})
	}
}

func replay(codec ResultCodec, cmd IdempotentCommand, rec IdempotencyRecord, fingerprint string) (any, error) {
	if rec.Fingerprint != "" && rec.Fingerprint != fingerprint {
		return nil, ErrIdempotencyKeyReused
	}
	out := cmd.ResultPrototype()
	if out == nil {
		return nil, fmt.Errorf("middleware: %s has no result prototype", cmd.Key())
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	if err := codec.Decode(rec.Payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func fingerprintOf(codec ResultCodec, cmd commands.Command) (string, error) {
	raw, err := codec.Encode(cmd)
	if err != nil {
		return "", fmt.Errorf("idempotency fingerprint: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
