package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fixdesk/maintenance-service/internal/domain"
)

// TechnicianRepository encapsulates technician persistence.
type TechnicianRepository interface {
	Create(ctx context.Context, tech *domain.Technician) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.Technician, error)
}

type technicianRepository struct {
	collection *mongo.Collection
}

// NewTechnicianRepository builds the repository.
func NewTechnicianRepository(db *mongo.Database) TechnicianRepository {
	return &technicianRepository{collection: db.Collection("technicians")}
}

func (r *technicianRepository) Create(ctx context.Context, tech *domain.Technician) error {
	now := time.Now()
	tech.CreatedAt = now
	tech.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, tech)
	return err
}

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	var tech domain.Technician
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tech); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tech, nil
}

func (r *technicianRepository) ListByVendor(ctx context.Context, vendorID string) ([]domain.Technician, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"vendor_id": vendorID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var techs []domain.Technician
	if err := cursor.All(ctx, &techs); err != nil {
		return nil, err
	}
	return techs, nil
}
