package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fixdesk/maintenance-service/internal/domain"
)

// SubAdminRepository encapsulates sub-admin persistence.
type SubAdminRepository interface {
	Create(ctx context.Context, sub *domain.SubAdmin) error
	GetByID(ctx context.Context, id string) (*domain.SubAdmin, error)
	GetByEmail(ctx context.Context, email string) (*domain.SubAdmin, error)
	ListByOrg(ctx context.Context, orgID string) ([]domain.SubAdmin, error)
	Update(ctx context.Context, sub *domain.SubAdmin) error
}

type subAdminRepository struct {
	collection *mongo.Collection
}

// NewSubAdminRepository builds the repository.
func NewSubAdminRepository(db *mongo.Database) SubAdminRepository {
	return &subAdminRepository{collection: db.Collection("subadmins")}
}

func (r *subAdminRepository) Create(ctx context.Context, sub *domain.SubAdmin) error {
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, sub)
	return err
}

func (r *subAdminRepository) GetByID(ctx context.Context, id string) (*domain.SubAdmin, error) {
	return r.fetchSingle(ctx, bson.M{"_id": id})
}

func (r *subAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.SubAdmin, error) {
	return r.fetchSingle(ctx, bson.M{"email": email})
}

func (r *subAdminRepository) fetchSingle(ctx context.Context, filter bson.M) (*domain.SubAdmin, error) {
	var sub domain.SubAdmin
	if err := r.collection.FindOne(ctx, filter).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subAdminRepository) ListByOrg(ctx context.Context, orgID string) ([]domain.SubAdmin, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []domain.SubAdmin
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subAdminRepository) Update(ctx context.Context, sub *domain.SubAdmin) error {
	sub.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": sub.ID}, sub)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
