package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

// PropertyRepository stores the property document; its bookings live in
// their own collection and are loaded alongside it.
type PropertyRepository struct {
	col      *mongo.Collection
	bookings *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{
		col:      db.Collection(propertiesCollection),
		bookings: db.Collection(bookingsCollection),
	}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainbooking.PropertyID) (*domainbooking.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("find property %s: %w", id, err)
	}
	bookings, err := r.loadBookings(ctx, bson.M{"property_id": string(id)})
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(bookings)
}

func (r *PropertyRepository) loadBookings(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.bookings.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Save writes the property with an optimistic version check. Every booking
// added to a property bumps its version, so two writers appending to the same
// property cannot both commit.
func (r *PropertyRepository) Save(ctx context.Context, p *domainbooking.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	if err := upsertVersioned(ctx, r.col, filter, doc); err != nil {
		return err
	}
	p.Version = doc.Version
	return nil
}

func upsertVersioned(ctx context.Context, col *mongo.Collection, filter bson.M, doc any) error {
	res, err := col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) || isWriteConflict(err) {
			return uow.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return uow.ErrConcurrentUpdate
	}
	return nil
}

var _ domainbooking.PropertyRepository = (*PropertyRepository)(nil)
