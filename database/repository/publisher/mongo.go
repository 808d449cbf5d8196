package publisherRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/S204-Inatel-2025-2/AgendaFacil/database"
	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

type MongoPublisherRepo struct {
	coll *mongo.Collection
}

var _ PublisherRepository = (*MongoPublisherRepo)(nil)

func NewMongoPublisherRepo(ctx context.Context, db *mongo.Database) (*MongoPublisherRepo, error) {
	repo := &MongoPublisherRepo{coll: db.Collection("publishers")}

	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "cnpj", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoPublisherRepo) FindByID(ctx context.Context, id string) (*models.Publisher, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoPublisherRepo) FindByCNPJ(ctx context.Context, cnpj string) (*models.Publisher, error) {
	return r.findOne(ctx, bson.M{"cnpj": cnpj})
}

func (r *MongoPublisherRepo) findOne(ctx context.Context, filter bson.M) (*models.Publisher, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var publisher models.Publisher
	if err := r.coll.FindOne(ctx, filter).Decode(&publisher); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch publisher: %w", err)
	}
	return &publisher, nil
}

func (r *MongoPublisherRepo) FindAll(ctx context.Context) ([]models.Publisher, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve publishers: %w", err)
	}
	defer cursor.Close(ctx)

	publishers := []models.Publisher{}
	if err := cursor.All(ctx, &publishers); err != nil {
		return nil, fmt.Errorf("failed to decode publishers: %w", err)
	}
	return publishers, nil
}

func (r *MongoPublisherRepo) Save(ctx context.Context, publisher *models.Publisher) (*models.Publisher, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	saved := *publisher
	now := time.Now()
	saved.UpdatedAt = now

	if saved.ID == "" {
		saved.ID = uuid.New().String()
		saved.CreatedAt = now
		if _, err := r.coll.InsertOne(ctx, saved); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, models.ErrDuplicateCNPJ
			}
			return nil, fmt.Errorf("failed to create publisher: %w", err)
		}
		return &saved, nil
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": saved.ID}, saved)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDuplicateCNPJ
		}
		return nil, fmt.Errorf("failed to update publisher %s: %w", saved.ID, err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("publisher %s: %w", saved.ID, models.ErrNotFound)
	}
	return &saved, nil
}
