package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeserve/models"
	"homeserve/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalogRepo implements CatalogRepository on the "services" collection.
type MongoCatalogRepo struct {
	coll *mongo.Collection
}

func NewMongoCatalogRepo(db *mongo.Database) CatalogRepository {
	repo := &MongoCatalogRepo{coll: db.Collection("services")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("services: %v", err)
	}
	return repo
}

func (r *MongoCatalogRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoCatalogRepo) FindByKey(ctx context.Context, key string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	if err := r.coll.FindOne(ctx, bson.M{"key": key}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError("service %q not found", key)
		}
		return nil, utils.StoreError(err, "failed to fetch service %q", key)
	}
	return &svc, nil
}

func (r *MongoCatalogRepo) List(ctx context.Context) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, utils.StoreError(err, "failed to list services")
	}
	defer cursor.Close(ctx)

	services := []models.Service{}
	if err := cursor.All(ctx, &services); err != nil {
		return nil, utils.StoreError(err, "failed to decode services")
	}
	return services, nil
}

func (r *MongoCatalogRepo) SeedDefaults(ctx context.Context, services []models.Service) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	n, err := r.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, utils.StoreError(err, "failed to count services")
	}
	if n > 0 || len(services) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(services))
	for _, svc := range services {
		docs = append(docs, prepareService(svc))
	}
	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, utils.StoreError(err, "failed to seed services")
	}
	return len(res.InsertedIDs), nil
}

func prepareService(svc models.Service) models.Service {
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	svc.Key = utils.NormalizeKey(svc.Name)
	return svc
}
