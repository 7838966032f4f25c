package booking

import (
	"context"
	"sort"

	"staybook/internal/app/dto"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
	"staybook/internal/domain/refund"
)

const (
	getBookingKey           = "booking.get"
	listGuestBookingsKey    = "booking.list_by_guest"
	listPropertyBookingsKey = "booking.list_by_property"
	refundQuoteKey          = "booking.refund_quote"
)

type GetBookingQuery struct {
	BookingID string `validate:"required"`
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*dto.Booking, error) {
	var out *dto.Booking
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
		if err != nil {
			return err
		}
		mapped := dto.MapBooking(b)
		out = &mapped
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type ListGuestBookingsQuery struct {
	GuestID string `validate:"required"`
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListGuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (*dto.BookingCollection, error) {
	var out *dto.BookingCollection
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		g, err := unit.Guests().ByID(ctx, domainguest.ID(q.GuestID))
		if err != nil {
			return err
		}
		items, err := unit.Bookings().ListByGuest(ctx, g.ID)
		if err != nil {
			return err
		}
		sortByStart(items)
		mapped := dto.MapBookings(items)
		out = &mapped
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type ListPropertyBookingsQuery struct {
	PropertyID string `validate:"required"`
}

func (q ListPropertyBookingsQuery) Key() string { return listPropertyBookingsKey }

type ListPropertyBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns the property's bookings, cancelled ones included.
func (h *ListPropertyBookingsHandler) Handle(ctx context.Context, q ListPropertyBookingsQuery) (*dto.BookingCollection, error) {
	var out *dto.BookingCollection
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := unit.Properties().ByID(ctx, domainbooking.PropertyID(q.PropertyID))
		if err != nil {
			return err
		}
		items, err := unit.Bookings().ListByProperty(ctx, p.ID)
		if err != nil {
			return err
		}
		sortByStart(items)
		mapped := dto.MapBookings(items)
		out = &mapped
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RefundQuoteQuery previews what cancelling a booking now would refund.
type RefundQuoteQuery struct {
	BookingID string `validate:"required"`
}

func (q RefundQuoteQuery) Key() string { return refundQuoteKey }

type RefundQuoteHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	Selector   refund.Selector
}

func (h *RefundQuoteHandler) Handle(ctx context.Context, q RefundQuoteQuery) (*dto.RefundQuote, error) {
	if h.Clock == nil {
		return nil, ErrHandlerMisconfigured
	}
	var out *dto.RefundQuote
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
		if err != nil {
			return err
		}
		if b.IsCancelled() {
			return domainbooking.ErrAlreadyCancelled
		}
		mapped := dto.MapRefundQuote(b.RefundQuote(h.Clock.Now(), h.Selector))
		out = &mapped
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func sortByStart(items []*domainbooking.Booking) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Range.Start().Before(items[j].Range.Start())
	})
}

var (
	_ queries.Handler[GetBookingQuery, *dto.Booking]                     = (*GetBookingHandler)(nil)
	_ queries.Handler[ListGuestBookingsQuery, *dto.BookingCollection]    = (*ListGuestBookingsHandler)(nil)
	_ queries.Handler[ListPropertyBookingsQuery, *dto.BookingCollection] = (*ListPropertyBookingsHandler)(nil)
	_ queries.Handler[RefundQuoteQuery, *dto.RefundQuote]                = (*RefundQuoteHandler)(nil)
)
