package providerRepo

import (
	"context"
	"errors"
	"time"

	"homeserve/models"
	"homeserve/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo creates a new instance of ProviderRepository using the "providers" collection.
func NewMongoProviderRepo(db *mongo.Database) ProviderRepository {
	repo := &MongoProviderRepo{coll: db.Collection("providers")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("providers: %v", err)
	}
	return repo
}

func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var provider models.Provider
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&provider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError("provider %s not found", id)
		}
		return nil, utils.StoreError(err, "failed to fetch provider with id %s", id)
	}
	return &provider, nil
}

// Create inserts a new provider document with empty statistic sets.
func (r *MongoProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	normalizeForInsert(provider)
	if _, err := r.coll.InsertOne(ctx, provider); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.ConflictError("provider %s already exists", provider.ID)
		}
		return utils.StoreError(err, "failed to create provider")
	}
	return nil
}

// normalizeForInsert keeps array fields non-null so $addToSet and $concatArrays work.
func normalizeForInsert(p *models.Provider) {
	p.Professions = utils.NormalizeKeys(p.Professions)
	if p.BookingIDs == nil {
		p.BookingIDs = []string{}
	}
	if p.ServedClients == nil {
		p.ServedClients = []string{}
	}
	if p.EarnedBookingIDs == nil {
		p.EarnedBookingIDs = []string{}
	}
	if p.RatedBookingIDs == nil {
		p.RatedBookingIDs = []string{}
	}
	if p.EarnedAmounts == nil {
		p.EarnedAmounts = map[string]float64{}
	}
	if p.BookingRatings == nil {
		p.BookingRatings = map[string]int{}
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// exists distinguishes a missing provider from a guard that did not match.
func (r *MongoProviderRepo) exists(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return utils.StoreError(err, "failed to look up provider %s", id)
	}
	if n == 0 {
		return utils.NotFoundError("provider %s not found", id)
	}
	return nil
}
