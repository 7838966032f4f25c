package booking

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/refund"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string `validate:"required"`
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

func (c CancelBookingCommand) OwnsUnitOfWork() bool { return true }

type CancelBookingResult struct {
	Booking dto.Booking     `json:"booking"`
	Refund  dto.RefundQuote `json:"refund"`
}

type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	Selector   refund.Selector
	Locker     policies.Locker
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
	if h.Clock == nil {
		return nil, ErrHandlerMisconfigured
	}
	id := domainbooking.BookingID(cmd.BookingID)

	// The property id is only known after a first read; the booking is read
	// again under the lock so the cancel sees the latest state.
	var propertyID domainbooking.PropertyID
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return err
		}
		propertyID = b.PropertyID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	release, err := lockProperty(ctx, h.Locker, string(propertyID))
	if err != nil {
		return nil, err
	}
	defer release()

	var result *CancelBookingResult
	err = runWithRetry(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return err
		}
		quote, err := b.Cancel(h.Clock.Now(), h.Selector)
		if err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.Drain()); err != nil {
			return err
		}
		result = &CancelBookingResult{Booking: dto.MapBooking(b), Refund: dto.MapRefundQuote(quote)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
