package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCommand struct{ Value string }

func (echoCommand) Key() string { return "test.echo" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[echoCommand, string](bus, echoCommand{}.Key(), HandlerFunc[echoCommand, string](
		func(ctx context.Context, cmd echoCommand) (string, error) {
			return "echo:" + cmd.Value, nil
		}))

	out, err := Dispatch[echoCommand, string](context.Background(), bus, echoCommand{Value: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", out)
	assert.Equal(t, []string{"test.echo"}, bus.Keys())

	_, err = Dispatch[echoCommand, int](context.Background(), bus, echoCommand{})
	require.ErrorIs(t, err, ErrResultType)
}

func TestDispatchErrors(t *testing.T) {
	bus := NewInMemoryBus()
	_, err := bus.Dispatch(context.Background(), otherCommand{})
	require.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Dispatch[otherCommand, any](context.Background(), nil, otherCommand{})
	require.ErrorIs(t, err, ErrNilBus)

	bus.RegisterRaw("test.other", func(ctx context.Context, cmd Command) (any, error) { return nil, nil })
	assert.Panics(t, func() {
		bus.RegisterRaw("test.other", func(ctx context.Context, cmd Command) (any, error) { return nil, nil })
	})
}
