package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fixdesk/maintenance-service/internal/domain"
)

// VendorRepository encapsulates vendor persistence.
type VendorRepository interface {
	Create(ctx context.Context, vendor *domain.Vendor) error
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)
	GetByEmail(ctx context.Context, email string) (*domain.Vendor, error)
	ListByOrg(ctx context.Context, orgID string) ([]domain.Vendor, error)
	Update(ctx context.Context, vendor *domain.Vendor) error
}

type vendorRepository struct {
	collection *mongo.Collection
}

// NewVendorRepository builds the repository.
func NewVendorRepository(db *mongo.Database) VendorRepository {
	return &vendorRepository{collection: db.Collection("vendors")}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	now := time.Now()
	vendor.CreatedAt = now
	vendor.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, vendor)
	return err
}

func (r *vendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	return r.fetchSingle(ctx, bson.M{"_id": id})
}

func (r *vendorRepository) GetByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	return r.fetchSingle(ctx, bson.M{"email": email})
}

func (r *vendorRepository) fetchSingle(ctx context.Context, filter bson.M) (*domain.Vendor, error) {
	var vendor domain.Vendor
	if err := r.collection.FindOne(ctx, filter).Decode(&vendor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) ListByOrg(ctx context.Context, orgID string) ([]domain.Vendor, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"org_ids": orgID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vendors []domain.Vendor
	if err := cursor.All(ctx, &vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *vendorRepository) Update(ctx context.Context, vendor *domain.Vendor) error {
	vendor.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": vendor.ID}, vendor)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
