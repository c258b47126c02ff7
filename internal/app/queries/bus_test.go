package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoQuery struct{ Value string }

func (echoQuery) Key() string { return "test.echo" }

func TestAskRoutesByQueryType(t *testing.T) {
	bus := NewInMemoryBus()
	Register(bus, HandlerFunc[echoQuery, string](func(_ context.Context, q echoQuery) (string, error) {
		return q.Value, nil
	}))

	got, err := Ask[echoQuery, string](context.Background(), bus, echoQuery{Value: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	_, err = Ask[echoQuery, int](context.Background(), bus, echoQuery{})
	assert.ErrorIs(t, err, ErrResultType)
	assert.Equal(t, []string{"test.echo"}, bus.Keys())
}

func TestAskUnknownQuery(t *testing.T) {
	_, err := Ask[echoQuery, string](context.Background(), NewInMemoryBus(), echoQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Ask[echoQuery, string](context.Background(), nil, echoQuery{})
	assert.ErrorIs(t, err, ErrNilBus)
}
