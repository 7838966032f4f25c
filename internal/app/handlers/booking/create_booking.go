package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
	"staybook/internal/domain/shared/daterange"
)

const createBookingKey = "booking.create"

type CreateBookingCommand struct {
	PropertyID      string    `validate:"required"`
	GuestID         string    `validate:"required"`
	StartDate       time.Time `validate:"required"`
	EndDate         time.Time `validate:"required"`
	Guests          int
	IdempotencyKeyV string `validate:"omitempty,max=128"`
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

// OwnsUnitOfWork keeps the property lock held across the handler's commit.
func (c CreateBookingCommand) OwnsUnitOfWork() bool { return true }

type CreateBookingResult struct {
	Booking dto.Booking `json:"booking"`
}

// CreateBookingHandler books a property for a guest. Reference checks run
// before business rules so missing ids are reported first.
type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	IDs        policies.IDGenerator
	Locker     policies.Locker
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

var ErrHandlerMisconfigured = errors.New("booking: handler missing clock or id generator")

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	if h.Clock == nil || h.IDs == nil {
		return nil, ErrHandlerMisconfigured
	}
	now := h.Clock.Now()
	if err := domainbooking.ValidateStart(cmd.StartDate, now); err != nil {
		return nil, err
	}
	dr, err := daterange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}

	release, err := lockProperty(ctx, h.Locker, cmd.PropertyID)
	if err != nil {
		return nil, err
	}
	defer release()

	var result *CreateBookingResult
	err = runWithRetry(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		property, err := unit.Properties().ByID(ctx, domainbooking.PropertyID(cmd.PropertyID))
		if err != nil {
			return err
		}
		guest, err := unit.Guests().ByID(ctx, domainguest.ID(cmd.GuestID))
		if err != nil {
			return err
		}
		if err := property.ValidateGuestCount(cmd.Guests); err != nil {
			return err
		}
		if !property.IsAvailable(dr) {
			return domainbooking.ErrUnavailable
		}

		booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:        domainbooking.BookingID(h.IDs.NewID()),
			Property:  property,
			Guest:     guest,
			Range:     dr,
			Guests:    cmd.Guests,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		if err := property.AddBooking(booking); err != nil {
			return err
		}

		if err := unit.Bookings().Save(ctx, booking); err != nil {
			return err
		}
		if err := unit.Properties().Save(ctx, property); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, booking.Drain()); err != nil {
			return err
		}
		result = &CreateBookingResult{Booking: dto.MapBooking(booking)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// runWithRetry runs fn in its own unit of work and replays it once when the
// commit loses an optimistic version race, so the loser re-reads the winner's
// state and fails with the domain error instead.
func runWithRetry(ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	const attempts = 2
	var err error
	for i := 0; i < attempts; i++ {
		err = uow.Run(ctx, factory, uow.TxOptions{}, fn)
		if !errors.Is(err, uow.ErrConcurrentUpdate) {
			return err
		}
		if _, ambient := uow.FromContext(ctx); ambient {
			return err
		}
	}
	return err
}

func lockProperty(ctx context.Context, locker policies.Locker, propertyID string) (func(), error) {
	if locker == nil || propertyID == "" {
		return func() {}, nil
	}
	return locker.Lock(ctx, policies.PropertyLockKey(propertyID))
}

var (
	_ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)

	_ middleware.IdempotentCommand = CreateBookingCommand{}
	_ middleware.UnitOwner         = CreateBookingCommand{}
	_ middleware.UnitOwner         = CancelBookingCommand{}
)
