package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fixdesk/maintenance-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	OrgID       *string
	LocationIDs []string
	VendorID    *string
	CreatedBy   *string
	Statuses    []domain.TicketStatus
	Steps       []string
	Priorities  []domain.TicketPriority
	Limit       int64
	Offset      int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	// UpdateWithRevision replaces the document only when the stored revision
	// matches ticket.Revision, then increments it. Returns
	// ErrRevisionConflict when another writer got there first.
	UpdateWithRevision(ctx context.Context, ticket *domain.Ticket) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// ListStalledAtStep returns tickets sitting at the given step whose last
	// update precedes the cutoff. Used by the escalation sweep.
	ListStalledAtStep(ctx context.Context, step string, cutoff time.Time) ([]domain.Ticket, error)
}

type ticketRepository struct {
	collection *mongo.Collection
}

// NewTicketRepository instantiates the repository over the tickets collection.
func NewTicketRepository(db *mongo.Database) TicketRepository {
	return &ticketRepository{collection: db.Collection("tickets")}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	ticket.Revision = 1
	_, err := r.collection.InsertOne(ctx, ticket)
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, bson.M{"_id": id})
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, bson.M{"number": number})
}

func (r *ticketRepository) fetchSingle(ctx context.Context, filter bson.M) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.collection.FindOne(ctx, filter).Decode(&ticket); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateWithRevision(ctx context.Context, ticket *domain.Ticket) error {
	readRevision := ticket.Revision
	ticket.Revision = readRevision + 1
	ticket.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": ticket.ID, "revision": readRevision},
		ticket,
	)
	if err != nil {
		ticket.Revision = readRevision
		return err
	}
	if result.MatchedCount == 0 {
		ticket.Revision = readRevision
		// distinguish a lost race from a missing document
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": ticket.ID})
		if countErr == nil && count == 0 {
			return ErrNotFound
		}
		return ErrRevisionConflict
	}
	return nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query := bson.M{}
	if filter.OrgID != nil {
		query["org_id"] = *filter.OrgID
	}
	if len(filter.LocationIDs) > 0 {
		query["location_id"] = bson.M{"$in": filter.LocationIDs}
	}
	if filter.VendorID != nil {
		query["vendor_id"] = *filter.VendorID
	}
	if filter.CreatedBy != nil {
		query["created_by"] = *filter.CreatedBy
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	if len(filter.Steps) > 0 {
		query["current_step"] = bson.M{"$in": filter.Steps}
	}
	if len(filter.Priorities) > 0 {
		query["priority"] = bson.M{"$in": filter.Priorities}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []domain.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) ListStalledAtStep(ctx context.Context, step string, cutoff time.Time) ([]domain.Ticket, error) {
	query := bson.M{
		"current_step": step,
		"updated_at":   bson.M{"$lt": cutoff},
	}
	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []domain.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
