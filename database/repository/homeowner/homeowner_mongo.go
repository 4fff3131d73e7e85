package homeownerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeserve/models"
	"homeserve/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHomeownerRepo implements HomeownerRepository on the "users" collection.
type MongoHomeownerRepo struct {
	coll *mongo.Collection
}

func NewMongoHomeownerRepo(db *mongo.Database) HomeownerRepository {
	repo := &MongoHomeownerRepo{coll: db.Collection("users")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("users: %v", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoHomeownerRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoHomeownerRepo) GetByID(ctx context.Context, id string) (*models.Homeowner, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var h models.Homeowner
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&h); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError("homeowner %s not found", id)
		}
		return nil, utils.StoreError(err, "failed to fetch homeowner %s", id)
	}
	return &h, nil
}

func (r *MongoHomeownerRepo) AddBookingRef(ctx context.Context, homeownerID, bookingID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$addToSet":    bson.M{"bookingIds": bookingID},
		"$set":         bson.M{"updatedAt": time.Now().UTC()},
		"$setOnInsert": bson.M{"id": homeownerID},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": homeownerID}, update, opts); err != nil {
		return utils.StoreError(err, "failed to add booking %s to homeowner %s", bookingID, homeownerID)
	}
	return nil
}

func (r *MongoHomeownerRepo) RemoveBookingRef(ctx context.Context, homeownerID, bookingID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"bookingIds": bookingID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": homeownerID}, update); err != nil {
		return utils.StoreError(err, "failed to remove booking %s from homeowner %s", bookingID, homeownerID)
	}
	return nil
}
