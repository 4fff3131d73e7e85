package bookingRepo

import (
	"context"
	"errors"
	"time"

	"homeserve/models"
	"homeserve/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a BookingRepository backed by the "bookings" collection.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	repo := &MongoBookingRepo{coll: db.Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("bookings: failed to create indexes: %v", err)
	}
	return repo
}

// withTimeout bounds a single store round-trip.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// ensureIndexes creates indexes for the booking lookups used by matching and listing.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := withTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "homeownerId", Value: 1}}},
		{Keys: bson.D{
			{Key: "isCancelled", Value: 1},
			{Key: "isBooked", Value: 1},
			{Key: "status", Value: 1},
			{Key: "serviceKey", Value: 1},
		}},
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "isBooked", Value: 1}}},
		// Partial index for the reconciliation scan.
		{
			Keys: bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(bson.M{
				"status":          string(models.StatusCompleted),
				"providerEarning": bson.M{"$exists": false},
			}).SetName("completed_unpaid"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return err
	}
	return nil
}

// Create inserts a new booking document.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return utils.StoreError(err, "failed to create booking")
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError("booking %s not found", id)
		}
		return nil, utils.StoreError(err, "failed to fetch booking %s", id)
	}
	return &booking, nil
}

// GetByIDs retrieves every existing booking among ids.
func (r *MongoBookingRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Booking, error) {
	if len(ids) == 0 {
		return []models.Booking{}, nil
	}
	return r.find(ctx, bson.M{"id": bson.M{"$in": ids}}, nil)
}

// ListByHomeowner returns all bookings created by a homeowner, newest first.
func (r *MongoBookingRepo) ListByHomeowner(ctx context.Context, homeownerID string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"homeownerId": homeownerID}, opts)
}

// ListOpen returns live bookings that are either unclaimed pending bookings for one of
// the service keys, or already claimed by the querying provider.
func (r *MongoBookingRepo) ListOpen(ctx context.Context, q OpenQuery) ([]models.Booking, error) {
	var branches bson.A
	if len(q.ServiceKeys) > 0 {
		branches = append(branches, bson.M{
			"isBooked":   false,
			"status":     string(models.StatusPending),
			"serviceKey": bson.M{"$in": q.ServiceKeys},
		})
	}
	if q.ProviderID != "" {
		branches = append(branches, bson.M{
			"isBooked":   true,
			"providerId": q.ProviderID,
		})
	}
	if len(branches) == 0 {
		return []models.Booking{}, nil
	}

	filter := bson.M{
		"isCancelled": false,
		"$or":         branches,
	}
	return r.find(ctx, filter, nil)
}

// ListUnpaidCompleted returns completed bookings with an attributable provider and a
// positive amount whose providerEarning is still unset.
func (r *MongoBookingRepo) ListUnpaidCompleted(ctx context.Context, limit int) ([]models.Booking, error) {
	filter := bson.M{
		"status":          string(models.StatusCompleted),
		"providerEarning": bson.M{"$exists": false},
		"providerId":      bson.M{"$exists": true, "$ne": ""},
		"serviceAmount":   bson.M{"$gt": 0},
	}
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

// Delete removes a booking document and returns it.
func (r *MongoBookingRepo) Delete(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var removed models.Booking
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"id": id}).Decode(&removed); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError("booking %s not found", id)
		}
		return nil, utils.StoreError(err, "failed to delete booking %s", id)
	}
	return &removed, nil
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cursor, err := r.coll.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, utils.StoreError(err, "failed to query bookings")
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, utils.StoreError(err, "failed to decode bookings")
	}
	return bookings, nil
}
