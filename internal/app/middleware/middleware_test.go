package middleware_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	"staybook/internal/infra/storage/memory"
)

type noteCommand struct {
	Text    string
	IdemKey string
}

func (noteCommand) Key() string              { return "test.note" }
func (c noteCommand) IdempotencyKey() string { return c.IdemKey }
func (noteCommand) ResultPrototype() any     { return &noteResult{} }

type otherCommand struct{ IdemKey string }

func (otherCommand) Key() string              { return "test.other" }
func (c otherCommand) IdempotencyKey() string { return c.IdemKey }
func (otherCommand) ResultPrototype() any     { return &noteResult{} }

type ownedCommand struct{}

func (ownedCommand) Key() string          { return "test.owned" }
func (ownedCommand) OwnsUnitOfWork() bool { return true }

type noteResult struct {
	Echo string `json:"echo"`
}

type countingBus struct {
	mu    sync.Mutex
	calls int
	err   error
	seen  func(ctx context.Context)
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	if b.seen != nil {
		b.seen(ctx)
	}
	if b.err != nil {
		return nil, b.err
	}
	if n, ok := cmd.(noteCommand); ok {
		return &noteResult{Echo: n.Text}, nil
	}
	return &noteResult{}, nil
}

func TestChainCommandsOrder(t *testing.T) {
	var order []string
	mark := func(name string) middleware.CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return busFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	bus := middleware.ChainCommands(&countingBus{}, mark("outer"), mark("inner"))
	_, err := bus.Dispatch(context.Background(), noteCommand{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type busFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f busFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) { return f(ctx, cmd) }

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	base := &countingBus{}
	bus := middleware.ChainCommands(base, middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), nil, time.Hour))
	ctx := context.Background()

	first, err := bus.Dispatch(ctx, noteCommand{Text: "hello", IdemKey: "k-1"})
	require.NoError(t, err)
	second, err := bus.Dispatch(ctx, noteCommand{Text: "hello", IdemKey: "k-1"})
	require.NoError(t, err)

	assert.Equal(t, 1, base.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "hello", second.(*noteResult).Echo)

	_, err = bus.Dispatch(ctx, otherCommand{IdemKey: "k-1"})
	assert.ErrorIs(t, err, middleware.ErrKeyReused)

	_, err = bus.Dispatch(ctx, noteCommand{Text: "no key"})
	require.NoError(t, err)
	assert.Equal(t, 2, base.calls)
}

func TestIdempotencyRejectsChangedPayload(t *testing.T) {
	base := &countingBus{}
	store := memory.NewIdempotencyStore(time.Hour)
	bus := middleware.ChainCommands(base, middleware.Idempotency(store, nil, time.Hour))
	ctx := context.Background()

	_, err := bus.Dispatch(ctx, noteCommand{Text: "hello", IdemKey: "k-2"})
	require.NoError(t, err)
	rec, found, err := store.Get(ctx, "k-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, rec.Fingerprint, 64)

	_, err = bus.Dispatch(ctx, noteCommand{Text: "changed", IdemKey: "k-2"})
	assert.ErrorIs(t, err, middleware.ErrKeyReused)
	assert.Equal(t, 1, base.calls)
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	boom := errors.New("boom")
	base := &countingBus{err: boom}
	bus := middleware.ChainCommands(base, middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), nil, time.Hour))

	for i := 0; i < 2; i++ {
		_, err := bus.Dispatch(context.Background(), noteCommand{IdemKey: "k-err"})
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 2, base.calls)
}

type staticStore struct {
	rec middleware.IdempotencyRecord
}

func (s *staticStore) Get(context.Context, string) (middleware.IdempotencyRecord, bool, error) {
	return s.rec, true, nil
}

func (s *staticStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.rec = rec
	return nil
}

func TestIdempotencyIgnoresExpiredRecords(t *testing.T) {
	store := &staticStore{rec: middleware.IdempotencyRecord{
		Key:        "k-old",
		Command:    "test.note",
		Payload:    []byte(`{"echo":"stale"}`),
		OccurredAt: time.Now().Add(-2 * time.Hour),
	}}
	base := &countingBus{}
	bus := middleware.ChainCommands(base, middleware.Idempotency(store, nil, time.Hour))

	res, err := bus.Dispatch(context.Background(), noteCommand{Text: "fresh", IdemKey: "k-old"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", res.(*noteResult).Echo)
	assert.Equal(t, 1, base.calls)
	assert.Equal(t, `{"echo":"fresh"}`, string(store.rec.Payload))
}

type countingFactory struct {
	memory.Factory
	begins int
}

func (f *countingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	f.begins++
	return f.Factory.Begin(ctx, opts)
}

func TestTransactionWrapsCommands(t *testing.T) {
	factory := &countingFactory{Factory: memory.Factory{Store: memory.NewStore()}}
	var ambient bool
	base := &countingBus{seen: func(ctx context.Context) { _, ambient = uow.FromContext(ctx) }}
	bus := middleware.ChainCommands(base, middleware.Transaction(factory, nil))

	_, err := bus.Dispatch(context.Background(), noteCommand{})
	require.NoError(t, err)
	assert.Equal(t, 1, factory.begins)
	assert.True(t, ambient)

	_, err = bus.Dispatch(context.Background(), ownedCommand{})
	require.NoError(t, err)
	assert.Equal(t, 1, factory.begins)
	assert.False(t, ambient)
}

func TestOutboxFlushOnlyAfterSuccess(t *testing.T) {
	var published []string
	box := memory.NewOutbox(func(_ context.Context, rec outbox.EventRecord) {
		published = append(published, rec.Name)
	})
	ctx := context.Background()
	require.NoError(t, box.Add(ctx, outbox.EventRecord{ID: "e-1", Name: "test.noted"}))

	failing := middleware.ChainCommands(&countingBus{err: errors.New("nope")}, middleware.OutboxFlush(box, nil))
	_, err := failing.Dispatch(ctx, noteCommand{})
	require.Error(t, err)
	assert.Empty(t, published)

	ok := middleware.ChainCommands(&countingBus{}, middleware.OutboxFlush(box, nil))
	_, err = ok.Dispatch(ctx, noteCommand{})
	require.NoError(t, err)
	assert.Equal(t, []string{"test.noted"}, published)
}

type brokenOutbox struct{}

func (brokenOutbox) Add(context.Context, outbox.EventRecord) error { return nil }
func (brokenOutbox) Flush(context.Context) error                   { return errors.New("broker down") }

func TestOutboxFlushFailureKeepsResult(t *testing.T) {
	bus := middleware.ChainCommands(&countingBus{}, middleware.OutboxFlush(brokenOutbox{}, nil))
	res, err := bus.Dispatch(context.Background(), noteCommand{Text: "kept"})
	require.NoError(t, err)
	assert.Equal(t, "kept", res.(*noteResult).Echo)
}

type rejectAll struct{ err error }

func (r rejectAll) Validate(context.Context, any) error { return r.err }

func TestValidationStopsDispatch(t *testing.T) {
	invalid := errors.New("invalid")
	base := &countingBus{}
	bus := middleware.ChainCommands(base, middleware.Validation(rejectAll{err: invalid}))
	_, err := bus.Dispatch(context.Background(), noteCommand{})
	assert.ErrorIs(t, err, invalid)
	assert.Zero(t, base.calls)
}
