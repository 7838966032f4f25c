package guest

import (
	"context"
	"errors"
	"log/slog"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainguest "staybook/internal/domain/guest"
	"staybook/internal/domain/shared/events"
)

const (
	registerGuestKey = "guest.register"
	getGuestKey      = "guest.get"
)

var ErrHandlerMisconfigured = errors.New("guest: handler missing clock or id generator")

type RegisterGuestCommand struct {
	Name string `validate:"required,max=200"`
}

func (c RegisterGuestCommand) Key() string { return registerGuestKey }

type RegisterGuestHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	IDs        policies.IDGenerator
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *RegisterGuestHandler) Handle(ctx context.Context, cmd RegisterGuestCommand) (*dto.Guest, error) {
	if h.Clock == nil || h.IDs == nil {
		return nil, ErrHandlerMisconfigured
	}
	g, err := domainguest.New(domainguest.CreateParams{
		ID:        domainguest.ID(h.IDs.NewID()),
		Name:      cmd.Name,
		CreatedAt: h.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	err = uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.Guests().Save(ctx, g); err != nil {
			return err
		}
		return outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{g.Registered()})
	})
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("guest registered", "guest_id", g.ID)
	}
	result := dto.MapGuest(g)
	return &result, nil
}

type GetGuestQuery struct {
	GuestID string `validate:"required"`
}

func (q GetGuestQuery) Key() string { return getGuestKey }

type GetGuestHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetGuestHandler) Handle(ctx context.Context, q GetGuestQuery) (*dto.Guest, error) {
	var out *dto.Guest
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		g, err := unit.Guests().ByID(ctx, domainguest.ID(q.GuestID))
		if err != nil {
			return err
		}
		mapped := dto.MapGuest(g)
		out = &mapped
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var (
	_ commands.Handler[RegisterGuestCommand, *dto.Guest] = (*RegisterGuestHandler)(nil)
	_ queries.Handler[GetGuestQuery, *dto.Guest]         = (*GetGuestHandler)(nil)
)
