package guest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/policies"
	domainguest "staybook/internal/domain/guest"
	"staybook/internal/infra/storage/memory"
)

func TestRegisterAndGetGuest(t *testing.T) {
	ctx := context.Background()
	factory := memory.Factory{Store: memory.NewStore()}
	box := memory.NewOutbox(nil)
	register := &RegisterGuestHandler{
		UoWFactory: factory,
		Clock:      policies.SystemClock{},
		IDs:        policies.IDFunc(func() string { return "guest-7" }),
		Outbox:     box,
	}

	created, err := register.Handle(ctx, RegisterGuestCommand{Name: "Grace Hopper"})
	require.NoError(t, err)
	assert.Equal(t, "guest-7", created.ID)
	require.Len(t, box.Pending(), 1)
	assert.Equal(t, "guest.registered", box.Pending()[0].Name)

	got, err := (&GetGuestHandler{UoWFactory: factory}).Handle(ctx, GetGuestQuery{GuestID: "guest-7"})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", got.Name)

	_, err = (&GetGuestHandler{UoWFactory: factory}).Handle(ctx, GetGuestQuery{GuestID: "nobody"})
	assert.ErrorIs(t, err, domainguest.ErrNotFound)
}

func TestRegisterGuestRejectsShortName(t *testing.T) {
	register := &RegisterGuestHandler{
		UoWFactory: memory.Factory{Store: memory.NewStore()},
		Clock:      policies.SystemClock{},
		IDs:        policies.UUIDGenerator{},
	}
	_, err := register.Handle(context.Background(), RegisterGuestCommand{Name: "A"})
	assert.ErrorIs(t, err, domainguest.ErrNameRequired)
}
