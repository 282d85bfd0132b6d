package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fixdesk/maintenance-service/internal/domain"
)

// OrganizationRepository encapsulates organization persistence.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
}

type organizationRepository struct {
	collection *mongo.Collection
}

// NewOrganizationRepository builds the repository.
func NewOrganizationRepository(db *mongo.Database) OrganizationRepository {
	return &organizationRepository{collection: db.Collection("organizations")}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, org)
	return err
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orgs []domain.Organization
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}
