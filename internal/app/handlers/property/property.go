package property

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
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/money"
)

const (
	createPropertyKey = "property.create"
	getPropertyKey    = "property.get"
)

var ErrHandlerMisconfigured = errors.New("property: handler missing clock or id generator")

type CreatePropertyCommand struct {
	Name             string `validate:"required,max=200"`
	Description      string `validate:"required,max=4000"`
	MaxGuests        int    `validate:"gt=0"`
	NightlyRateCents int64  `validate:"gt=0"`
	Currency         string `validate:"required,len=3"`
}

func (c CreatePropertyCommand) Key() string { return createPropertyKey }

type CreatePropertyHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	IDs        policies.IDGenerator
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CreatePropertyHandler) Handle(ctx context.Context, cmd CreatePropertyCommand) (*dto.Property, error) {
	if h.Clock == nil || h.IDs == nil {
		return nil, ErrHandlerMisconfigured
	}
	rate, err := money.New(cmd.NightlyRateCents, cmd.Currency)
	if err != nil {
		return nil, err
	}
	p, err := domainbooking.NewProperty(domainbooking.PropertyParams{
		ID:          domainbooking.PropertyID(h.IDs.NewID()),
		Name:        cmd.Name,
		Description: cmd.Description,
		MaxGuests:   cmd.MaxGuests,
		NightlyRate: rate,
		CreatedAt:   h.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	err = uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.Properties().Save(ctx, p); err != nil {
			return err
		}
		return outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, p.Drain())
	})
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("property registered", "property_id", p.ID, "max_guests", p.MaxGuests)
	}
	result := dto.MapProperty(p)
	return &result, nil
}

type GetPropertyQuery struct {
	PropertyID string `validate:"required"`
}

func (q GetPropertyQuery) Key() string { return getPropertyKey }

type GetPropertyHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPropertyHandler) Handle(ctx context.Context, q GetPropertyQuery) (*dto.Property, error) {
	var out *dto.Property
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := unit.Properties().ByID(ctx, domainbooking.PropertyID(q.PropertyID))
		if err != nil {
			return err
		}
		mapped := dto.MapProperty(p)
		out = &mapped
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var (
	_ commands.Handler[CreatePropertyCommand, *dto.Property] = (*CreatePropertyHandler)(nil)
	_ queries.Handler[GetPropertyQuery, *dto.Property]       = (*GetPropertyHandler)(nil)
)
