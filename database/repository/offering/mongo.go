package offeringRepo

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

// MongoOfferingRepo implements OfferingRepository using MongoDB.
type MongoOfferingRepo struct {
	coll *mongo.Collection
}

var _ OfferingRepository = (*MongoOfferingRepo)(nil)

func NewMongoOfferingRepo(ctx context.Context, db *mongo.Database) (*MongoOfferingRepo, error) {
	repo := &MongoOfferingRepo{coll: db.Collection("offerings")}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoOfferingRepo) ensureIndexes(ctx context.Context) error {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booked", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "publisher_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "reserved_by", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create offering indexes: %w", err)
	}
	return nil
}

func (r *MongoOfferingRepo) FindByID(ctx context.Context, id string) (*models.Offering, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoOfferingRepo) FindByName(ctx context.Context, name string) (*models.Offering, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *MongoOfferingRepo) findOne(ctx context.Context, filter bson.M) (*models.Offering, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var offering models.Offering
	if err := r.coll.FindOne(ctx, filter).Decode(&offering); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch offering: %w", err)
	}
	return &offering, nil
}

func (r *MongoOfferingRepo) find(ctx context.Context, filter bson.M) ([]models.Offering, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve offerings: %w", err)
	}
	defer cursor.Close(ctx)

	offerings := []models.Offering{}
	if err := cursor.All(ctx, &offerings); err != nil {
		return nil, fmt.Errorf("failed to decode offerings: %w", err)
	}
	return offerings, nil
}

func (r *MongoOfferingRepo) FindOpen(ctx context.Context) ([]models.Offering, error) {
	return r.find(ctx, bson.M{"booked": false})
}

func (r *MongoOfferingRepo) FindByPublisher(ctx context.Context, publisherID string) ([]models.Offering, error) {
	return r.find(ctx, bson.M{"publisher_id": publisherID})
}

func (r *MongoOfferingRepo) FindByCategory(ctx context.Context, category string) ([]models.Offering, error) {
	return r.find(ctx, bson.M{"category": category})
}

func (r *MongoOfferingRepo) FindByReserver(ctx context.Context, accountID string) ([]models.Offering, error) {
	return r.find(ctx, bson.M{"reserved_by": accountID})
}

func (r *MongoOfferingRepo) Save(ctx context.Context, offering *models.Offering) (*models.Offering, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	saved := *offering
	now := time.Now()
	saved.UpdatedAt = now

	if saved.ID == "" {
		saved.ID = uuid.New().String()
		saved.CreatedAt = now
		if _, err := r.coll.InsertOne(ctx, saved); err != nil {
			return nil, fmt.Errorf("failed to create offering: %w", err)
		}
		return &saved, nil
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": saved.ID}, saved)
	if err != nil {
		return nil, fmt.Errorf("failed to update offering %s: %w", saved.ID, err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("offering %s: %w", saved.ID, models.ErrNotFound)
	}
	return &saved, nil
}

func (r *MongoOfferingRepo) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete offering %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("offering %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// MarkBooked uses the {id, booked:false} filter as the compare half of a
// compare-and-set, so only one writer can ever match.
func (r *MongoOfferingRepo) MarkBooked(ctx context.Context, id, accountID string) (*models.Offering, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"id": id, "booked": false}
	update := bson.M{"$set": bson.M{
		"booked":      true,
		"reserved_by": accountID,
		"booked_at":   now,
		"updated_at":  now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var offering models.Offering
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&offering)
	if err == nil {
		return &offering, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to book offering %s: %w", id, err)
	}

	// No match: either the offering is gone or someone else won.
	existing, findErr := r.FindByID(ctx, id)
	if findErr != nil {
		return nil, findErr
	}
	if existing == nil {
		return nil, fmt.Errorf("offering %s: %w", id, models.ErrNotFound)
	}
	return nil, fmt.Errorf("offering %s: %w", id, models.ErrAlreadyBooked)
}
