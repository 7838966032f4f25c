package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
)

// BookingRepository returns bookings attached to a freshly loaded property so
// callers always see the property's full booking set.
type BookingRepository struct {
	col        *mongo.Collection
	properties *PropertyRepository
}

func NewBookingRepository(db *mongo.Database, properties *PropertyRepository) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection), properties: properties}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var ref struct {
		PropertyID string `bson:"property_id"`
	}
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&ref); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}
	p, err := r.properties.ByID(ctx, domainbooking.PropertyID(ref.PropertyID))
	if err != nil {
		return nil, err
	}
	b, ok := p.Booking(id)
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b.Property == nil {
		return domainbooking.ErrMissingProperty
	}
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	if err := upsertVersioned(ctx, r.col, filter, doc); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID domainguest.ID) ([]*domainbooking.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1, "property_id": 1})
	cur, err := r.col.Find(ctx, bson.M{"guest_id": string(guestID)}, opts)
	if err != nil {
		return nil, fmt.Errorf("find guest bookings: %w", err)
	}
	var refs []struct {
		ID         string `bson:"_id"`
		PropertyID string `bson:"property_id"`
	}
	if err := cur.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("decode guest bookings: %w", err)
	}
	// Each booking comes from its property so the back reference is set.
	properties := make(map[string]*domainbooking.Property)
	out := make([]*domainbooking.Booking, 0, len(refs))
	for _, ref := range refs {
		p, ok := properties[ref.PropertyID]
		if !ok {
			p, err = r.properties.ByID(ctx, domainbooking.PropertyID(ref.PropertyID))
			if err != nil {
				return nil, err
			}
			properties[ref.PropertyID] = p
		}
		if b, found := p.Booking(domainbooking.BookingID(ref.ID)); found {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID domainbooking.PropertyID) ([]*domainbooking.Booking, error) {
	p, err := r.properties.ByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return p.Bookings(), nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
