package accountRepo

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

// MongoAccountRepo implements AccountRepository using MongoDB.
type MongoAccountRepo struct {
	coll *mongo.Collection
}

var _ AccountRepository = (*MongoAccountRepo)(nil)

// NewMongoAccountRepo binds the "accounts" collection and ensures its indexes.
func NewMongoAccountRepo(ctx context.Context, db *mongo.Database) (*MongoAccountRepo, error) {
	repo := &MongoAccountRepo{coll: db.Collection("accounts")}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// ensureIndexes makes the store the authoritative guard for email and
// subject uniqueness.
func (r *MongoAccountRepo) ensureIndexes(ctx context.Context) error {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "subject_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"subject_id": bson.M{"$exists": true, "$type": "string"}},
			),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}
	return nil
}

func (r *MongoAccountRepo) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var account models.Account
	if err := r.coll.FindOne(ctx, filter).Decode(&account); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	return &account, nil
}

func (r *MongoAccountRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoAccountRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (r *MongoAccountRepo) FindBySubjectID(ctx context.Context, subjectID string) (*models.Account, error) {
	if subjectID == "" {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"subject_id": subjectID})
}

func (r *MongoAccountRepo) FindAll(ctx context.Context) ([]models.Account, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve accounts: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := []models.Account{}
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}
	return accounts, nil
}

func (r *MongoAccountRepo) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	saved := *account
	saved.Email = models.NormalizeEmail(saved.Email)
	now := time.Now()
	saved.UpdatedAt = now

	if saved.ID == "" {
		saved.ID = uuid.New().String()
		saved.CreatedAt = now
		if _, err := r.coll.InsertOne(ctx, saved); err != nil {
			return nil, translateWriteError(err)
		}
		return &saved, nil
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": saved.ID}, saved)
	if err != nil {
		return nil, translateWriteError(err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("account %s: %w", saved.ID, models.ErrNotFound)
	}
	return &saved, nil
}

func translateWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", models.ErrDuplicateEmail, err)
	}
	return fmt.Errorf("failed to save account: %w", err)
}
