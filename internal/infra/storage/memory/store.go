package memory

import (
	"sync"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
)

// Store keeps value snapshots of every aggregate. Readers always get freshly
// rebuilt aggregates, so callers never share pointers with each other.
type Store struct {
	mu    sync.RWMutex
	state state
}

type propertyRecord struct {
	params   domainbooking.PropertyParams
	bookings []domainbooking.BookingID
}

type bookingRecord struct {
	propertyID domainbooking.PropertyID
	params     domainbooking.RestoreParams
}

type state struct {
	properties map[domainbooking.PropertyID]propertyRecord
	bookings   map[domainbooking.BookingID]bookingRecord
	guests     map[domainguest.ID]domainguest.Guest
}

func NewStore() *Store {
	return &Store{state: state{
		properties: make(map[domainbooking.PropertyID]propertyRecord),
		bookings:   make(map[domainbooking.BookingID]bookingRecord),
		guests:     make(map[domainguest.ID]domainguest.Guest),
	}}
}

func (s state) clone() state {
	out := state{
		properties: make(map[domainbooking.PropertyID]propertyRecord, len(s.properties)),
		bookings:   make(map[domainbooking.BookingID]bookingRecord, len(s.bookings)),
		guests:     make(map[domainguest.ID]domainguest.Guest, len(s.guests)),
	}
	for id, rec := range s.properties {
		rec.bookings = append([]domainbooking.BookingID(nil), rec.bookings...)
		out.properties[id] = rec
	}
	for id, rec := range s.bookings {
		out.bookings[id] = rec
	}
	for id, g := range s.guests {
		out.guests[id] = g
	}
	return out
}

// apply runs staged writes against a copy of the state and swaps it in only
// when every write succeeded.
func (s *Store) apply(ops []func(*state) error) error {
	if len(ops) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	for _, op := range ops {
		if err := op(&next); err != nil {
			return err
		}
	}
	s.state = next
	return nil
}

func (s *Store) loadProperty(id domainbooking.PropertyID) (*domainbooking.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.property(id)
}

func (s state) property(id domainbooking.PropertyID) (*domainbooking.Property, error) {
	rec, ok := s.properties[id]
	if !ok {
		return nil, domainbooking.ErrPropertyNotFound
	}
	bookings := make([]*domainbooking.Booking, 0, len(rec.bookings))
	for _, bid := range rec.bookings {
		brec, ok := s.bookings[bid]
		if !ok {
			continue
		}
		b, err := domainbooking.RestoreBooking(brec.params)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return domainbooking.RestoreProperty(rec.params, bookings)
}

func (s state) saveBooking(b *domainbooking.Booking, expected int64) error {
	propertyID := b.PropertyID()
	prop, ok := s.properties[propertyID]
	if !ok {
		return domainbooking.ErrPropertyNotFound
	}
	current, exists := s.bookings[b.ID]
	switch {
	case exists && current.params.Version != expected:
		return uow.ErrConcurrentUpdate
	case !exists && expected != 0:
		return uow.ErrConcurrentUpdate
	}
	params := bookingParams(b)
	params.Version = expected + 1
	s.bookings[b.ID] = bookingRecord{propertyID: propertyID, params: params}
	if !exists {
		prop.bookings = append(prop.bookings, b.ID)
		s.properties[propertyID] = prop
	}
	return nil
}

func (s state) saveProperty(p *domainbooking.Property, expected int64) error {
	current, exists := s.properties[p.ID]
	switch {
	case exists && current.params.Version != expected:
		return uow.ErrConcurrentUpdate
	case !exists && expected != 0:
		return uow.ErrConcurrentUpdate
	}
	rec := propertyRecord{params: propertyParams(p)}
	rec.params.Version = expected + 1
	for _, b := range p.Bookings() {
		rec.bookings = append(rec.bookings, b.ID)
		// Bookings appended without their own save are stored with the property.
		if _, ok := s.bookings[b.ID]; !ok {
			params := bookingParams(b)
			params.Version = b.Version + 1
			s.bookings[b.ID] = bookingRecord{propertyID: p.ID, params: params}
		}
	}
	s.properties[p.ID] = rec
	return nil
}

func propertyParams(p *domainbooking.Property) domainbooking.PropertyParams {
	return domainbooking.PropertyParams{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		MaxGuests:   p.MaxGuests,
		NightlyRate: p.NightlyRate,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

func bookingParams(b *domainbooking.Booking) domainbooking.RestoreParams {
	return domainbooking.RestoreParams{
		ID:          b.ID,
		GuestID:     b.GuestID,
		Range:       b.Range,
		Guests:      b.Guests,
		Total:       b.Total,
		Refund:      b.Refund,
		RefundRule:  b.RefundRule,
		State:       b.State,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		CancelledAt: b.CancelledAt,
		Version:     b.Version,
	}
}
