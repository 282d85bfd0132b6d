package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fixdesk/maintenance-service/internal/domain"
)

// LocationRepository encapsulates location persistence.
type LocationRepository interface {
	Create(ctx context.Context, location *domain.Location) error
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	ListByOrg(ctx context.Context, orgID string) ([]domain.Location, error)
	Update(ctx context.Context, location *domain.Location) error
}

type locationRepository struct {
	collection *mongo.Collection
}

// NewLocationRepository builds the repository.
func NewLocationRepository(db *mongo.Database) LocationRepository {
	return &locationRepository{collection: db.Collection("locations")}
}

func (r *locationRepository) Create(ctx context.Context, location *domain.Location) error {
	now := time.Now()
	location.CreatedAt = now
	location.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, location)
	return err
}

func (r *locationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	var location domain.Location
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&location); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) ListByOrg(ctx context.Context, orgID string) ([]domain.Location, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []domain.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) Update(ctx context.Context, location *domain.Location) error {
	location.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": location.ID}, location)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
