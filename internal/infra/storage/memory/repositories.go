package memory

import (
	"context"
	"errors"
	"sort"

	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
)

var ErrReadOnly = errors.New("memory: write in read-only unit of work")

type propertyRepository struct {
	unit *Unit
}

func (r propertyRepository) ByID(ctx context.Context, id domainbooking.PropertyID) (*domainbooking.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.unit.store.loadProperty(id)
}

// Save stages the property; its version is bumped immediately and checked
// against the stored one on commit.
func (r propertyRepository) Save(ctx context.Context, p *domainbooking.Property) error {
	if p == nil {
		return domainbooking.ErrPropertyIDRequired
	}
	expected := p.Version
	if err := r.unit.stage(func(s *state) error { return s.saveProperty(p, expected) }); err != nil {
		return err
	}
	p.Version = expected + 1
	return nil
}

type bookingRepository struct {
	unit *Unit
}

func (r bookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	store := r.unit.store
	store.mu.RLock()
	defer store.mu.RUnlock()
	rec, ok := store.state.bookings[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	p, err := store.state.property(rec.propertyID)
	if err != nil {
		return nil, err
	}
	b, ok := p.Booking(id)
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b, nil
}

func (r bookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b == nil {
		return domainbooking.ErrBookingRequired
	}
	if b.Property == nil {
		return domainbooking.ErrMissingProperty
	}
	expected := b.Version
	if err := r.unit.stage(func(s *state) error { return s.saveBooking(b, expected) }); err != nil {
		return err
	}
	b.Version = expected + 1
	return nil
}

func (r bookingRepository) ListByGuest(ctx context.Context, guestID domainguest.ID) ([]*domainbooking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	store := r.unit.store
	store.mu.RLock()
	defer store.mu.RUnlock()

	byProperty := make(map[domainbooking.PropertyID][]domainbooking.BookingID)
	for id, rec := range store.state.bookings {
		if rec.params.GuestID == guestID {
			byProperty[rec.propertyID] = append(byProperty[rec.propertyID], id)
		}
	}
	var out []*domainbooking.Booking
	for propertyID, ids := range byProperty {
		p, err := store.state.property(propertyID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if b, ok := p.Booking(id); ok {
				out = append(out, b)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r bookingRepository) ListByProperty(ctx context.Context, propertyID domainbooking.PropertyID) ([]*domainbooking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := r.unit.store.loadProperty(propertyID)
	if err != nil {
		return nil, err
	}
	return p.Bookings(), nil
}

type guestRepository struct {
	unit *Unit
}

func (r guestRepository) ByID(ctx context.Context, id domainguest.ID) (*domainguest.Guest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	store := r.unit.store
	store.mu.RLock()
	defer store.mu.RUnlock()
	g, ok := store.state.guests[id]
	if !ok {
		return nil, domainguest.ErrNotFound
	}
	return &g, nil
}

func (r guestRepository) Save(ctx context.Context, g *domainguest.Guest) error {
	if g == nil {
		return domainguest.ErrIDRequired
	}
	snapshot := *g
	return r.unit.stage(func(s *state) error {
		s.guests[snapshot.ID] = snapshot
		return nil
	})
}

var (
	_ domainbooking.PropertyRepository = propertyRepository{}
	_ domainbooking.Repository         = bookingRepository{}
	_ domainguest.Repository           = guestRepository{}
)
