package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/fixdesk/maintenance-service/internal/domain"
	"github.com/fixdesk/maintenance-service/internal/events"
	"github.com/fixdesk/maintenance-service/internal/repository"
)

// In-memory repository fakes. Reads hand out deep copies so a transition that
// fails mid-flight cannot leak partial mutations into the store.

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket

	updateErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	ticket.Revision = 1
	r.tickets[ticket.ID] = cloneTicket(ticket)
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneTicket(ticket), nil
}

func (r *fakeTicketRepo) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.Number == number {
			return cloneTicket(ticket), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTicketRepo) UpdateWithRevision(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Revision != ticket.Revision {
		return repository.ErrRevisionConflict
	}
	ticket.Revision++
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = cloneTicket(ticket)
	return nil
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.VendorID != nil && (ticket.VendorID == nil || *ticket.VendorID != *filter.VendorID) {
			continue
		}
		if filter.CreatedBy != nil && ticket.CreatedBy != *filter.CreatedBy {
			continue
		}
		if len(filter.LocationIDs) > 0 && !containsString(filter.LocationIDs, ticket.LocationID) {
			continue
		}
		out = append(out, *cloneTicket(ticket))
	}
	return out, nil
}

func (r *fakeTicketRepo) ListStalledAtStep(ctx context.Context, step string, cutoff time.Time) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.CurrentStep == step && ticket.UpdatedAt.Before(cutoff) {
			out = append(out, *cloneTicket(ticket))
		}
	}
	return out, nil
}

func cloneTicket(t *domain.Ticket) *domain.Ticket {
	clone := *t
	if t.VendorID != nil {
		v := *t.VendorID
		clone.VendorID = &v
	}
	if t.CompletionDate != nil {
		d := *t.CompletionDate
		clone.CompletionDate = &d
	}
	if t.VerificationDate != nil {
		d := *t.VerificationDate
		clone.VerificationDate = &d
	}
	clone.MediaRefs = append([]string(nil), t.MediaRefs...)
	clone.History = append([]domain.HistoryEntry(nil), t.History...)
	clone.WorkOrders = append([]domain.WorkOrderEntry(nil), t.WorkOrders...)
	clone.Notes = append([]domain.Note(nil), t.Notes...)
	return &clone
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

type fakeVendorRepo struct {
	vendors map[string]*domain.Vendor
}

func newFakeVendorRepo(vendors ...*domain.Vendor) *fakeVendorRepo {
	repo := &fakeVendorRepo{vendors: make(map[string]*domain.Vendor)}
	for _, v := range vendors {
		repo.vendors[v.ID] = v
	}
	return repo
}

func (r *fakeVendorRepo) Create(ctx context.Context, vendor *domain.Vendor) error {
	r.vendors[vendor.ID] = vendor
	return nil
}

func (r *fakeVendorRepo) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	vendor, ok := r.vendors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return vendor, nil
}

func (r *fakeVendorRepo) GetByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	for _, vendor := range r.vendors {
		if vendor.Email == email {
			return vendor, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeVendorRepo) ListByOrg(ctx context.Context, orgID string) ([]domain.Vendor, error) {
	var out []domain.Vendor
	for _, vendor := range r.vendors {
		if vendor.InOrg(orgID) {
			out = append(out, *vendor)
		}
	}
	return out, nil
}

func (r *fakeVendorRepo) Update(ctx context.Context, vendor *domain.Vendor) error {
	if _, ok := r.vendors[vendor.ID]; !ok {
		return repository.ErrNotFound
	}
	r.vendors[vendor.ID] = vendor
	return nil
}

type fakeLocationRepo struct {
	locations map[string]*domain.Location
}

func newFakeLocationRepo(locations ...*domain.Location) *fakeLocationRepo {
	repo := &fakeLocationRepo{locations: make(map[string]*domain.Location)}
	for _, loc := range locations {
		repo.locations[loc.ID] = loc
	}
	return repo
}

func (r *fakeLocationRepo) Create(ctx context.Context, location *domain.Location) error {
	r.locations[location.ID] = location
	return nil
}

func (r *fakeLocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	location, ok := r.locations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return location, nil
}

func (r *fakeLocationRepo) ListByOrg(ctx context.Context, orgID string) ([]domain.Location, error) {
	var out []domain.Location
	for _, location := range r.locations {
		if location.OrgID == orgID {
			out = append(out, *location)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) Update(ctx context.Context, location *domain.Location) error {
	if _, ok := r.locations[location.ID]; !ok {
		return repository.ErrNotFound
	}
	r.locations[location.ID] = location
	return nil
}

type fakeSubAdminRepo struct {
	subs map[string]*domain.SubAdmin
}

func newFakeSubAdminRepo(subs ...*domain.SubAdmin) *fakeSubAdminRepo {
	repo := &fakeSubAdminRepo{subs: make(map[string]*domain.SubAdmin)}
	for _, sub := range subs {
		repo.subs[sub.ID] = sub
	}
	return repo
}

func (r *fakeSubAdminRepo) Create(ctx context.Context, sub *domain.SubAdmin) error {
	r.subs[sub.ID] = sub
	return nil
}

func (r *fakeSubAdminRepo) GetByID(ctx context.Context, id string) (*domain.SubAdmin, error) {
	sub, ok := r.subs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return sub, nil
}

func (r *fakeSubAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.SubAdmin, error) {
	for _, sub := range r.subs {
		if sub.Email == email {
			return sub, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSubAdminRepo) ListByOrg(ctx context.Context, orgID string) ([]domain.SubAdmin, error) {
	var out []domain.SubAdmin
	for _, sub := range r.subs {
		if sub.OrgID == orgID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *fakeSubAdminRepo) Update(ctx context.Context, sub *domain.SubAdmin) error {
	if _, ok := r.subs[sub.ID]; !ok {
		return repository.ErrNotFound
	}
	r.subs[sub.ID] = sub
	return nil
}

// captureDispatcher records published events for assertions.
type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *captureDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event(nil), d.events...)
}

func (d *captureDispatcher) lastOfType(eventType events.EventType) (events.Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.events) - 1; i >= 0; i-- {
		if d.events[i].Type == eventType {
			return d.events[i], true
		}
	}
	return events.Event{}, false
}
