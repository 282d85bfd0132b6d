package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fixdesk/maintenance-service/internal/auth"
	"github.com/fixdesk/maintenance-service/internal/config"
	"github.com/fixdesk/maintenance-service/internal/domain"
	"github.com/fixdesk/maintenance-service/internal/permission"
	"github.com/fixdesk/maintenance-service/internal/repository"
	apperrors "github.com/fixdesk/maintenance-service/pkg/util"
)

// DirectoryService manages organizations, locations, vendors, and sub-admins.
// Ticket workflow never mutates these records; the directory is their single
// write path.
type DirectoryService struct {
	orgs        repository.OrganizationRepository
	locations   repository.LocationRepository
	vendors     repository.VendorRepository
	subAdmins   repository.SubAdminRepository
	technicians repository.TechnicianRepository
	bcryptCost  int
	now         func() time.Time
}

// DirectoryDependencies bundles repositories for the directory service.
type DirectoryDependencies struct {
	OrgRepo        repository.OrganizationRepository
	LocationRepo   repository.LocationRepository
	VendorRepo     repository.VendorRepository
	SubAdminRepo   repository.SubAdminRepository
	TechnicianRepo repository.TechnicianRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(cfg config.Config, deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		orgs:        deps.OrgRepo,
		locations:   deps.LocationRepo,
		vendors:     deps.VendorRepo,
		subAdmins:   deps.SubAdminRepo,
		technicians: deps.TechnicianRepo,
		bcryptCost:  cfg.Auth.BcryptCost,
		now:         time.Now,
	}
}

// CreateOrganization registers a new organization.
func (s *DirectoryService) CreateOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	if name == "" {
		return nil, apperrors.NewInvalidInput("name is required", nil)
	}
	now := s.now().UTC()
	org := &domain.Organization{
		ID:        uuid.NewString(),
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// ListOrganizations returns every registered organization.
func (s *DirectoryService) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return orgs, nil
}

// CreateLocation registers a new location under an organization.
func (s *DirectoryService) CreateLocation(ctx context.Context, orgID, name, address string) (*domain.Location, error) {
	if orgID == "" || name == "" {
		return nil, apperrors.NewInvalidInput("org_id and name are required", nil)
	}
	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	now := s.now().UTC()
	location := &domain.Location{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Name:      name,
		Address:   address,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.locations.Create(ctx, location); err != nil {
		return nil, apperrors.MapError(err)
	}
	return location, nil
}

// ListLocations returns the locations of an organization.
func (s *DirectoryService) ListLocations(ctx context.Context, orgID string) ([]domain.Location, error) {
	locations, err := s.locations.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return locations, nil
}

// CreateVendor registers a vendor and hashes its password.
func (s *DirectoryService) CreateVendor(ctx context.Context, name, email, password string, orgIDs []string, tier int) (*domain.Vendor, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewInvalidInput("name, email, and password are required", nil)
	}
	if tier < 1 || tier > 3 {
		return nil, apperrors.NewInvalidInput("tier must be between 1 and 3", nil)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	now := s.now().UTC()
	vendor := &domain.Vendor{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		OrgIDs:       orgIDs,
		Tier:         tier,
		Status:       domain.VendorStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.vendors.Create(ctx, vendor); err != nil {
		return nil, apperrors.MapError(err)
	}
	return vendor, nil
}

// GetVendor fetches a vendor by id.
func (s *DirectoryService) GetVendor(ctx context.Context, id string) (*domain.Vendor, error) {
	vendor, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return vendor, nil
}

// ListVendors returns the vendors serving an organization.
func (s *DirectoryService) ListVendors(ctx context.Context, orgID string) ([]domain.Vendor, error) {
	vendors, err := s.vendors.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return vendors, nil
}

// SetVendorStatus activates or deactivates a vendor. Inactive vendors cannot
// log in or receive new assignments; tickets already assigned stay assigned.
func (s *DirectoryService) SetVendorStatus(ctx context.Context, id string, status domain.VendorStatus) (*domain.Vendor, error) {
	if status != domain.VendorStatusActive && status != domain.VendorStatusInactive {
		return nil, apperrors.NewInvalidInput("status must be active or inactive", nil)
	}
	vendor, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	vendor.Status = status
	vendor.UpdatedAt = s.now().UTC()
	if err := s.vendors.Update(ctx, vendor); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return vendor, nil
}

// CreateTechnician registers a field technician under a vendor.
func (s *DirectoryService) CreateTechnician(ctx context.Context, vendorID, name, email, phone string) (*domain.Technician, error) {
	if vendorID == "" || name == "" {
		return nil, apperrors.NewInvalidInput("vendor_id and name are required", nil)
	}
	if _, err := s.vendors.GetByID(ctx, vendorID); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	now := s.now().UTC()
	tech := &domain.Technician{
		ID:        uuid.NewString(),
		VendorID:  vendorID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.technicians.Create(ctx, tech); err != nil {
		return nil, apperrors.MapError(err)
	}
	return tech, nil
}

// ListTechnicians returns the technicians of a vendor.
func (s *DirectoryService) ListTechnicians(ctx context.Context, vendorID string) ([]domain.Technician, error) {
	techs, err := s.technicians.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return techs, nil
}

// SubAdminInput describes a sub-admin to create. Permissions may come from a
// named security group, an explicit list, or both; the union is stored.
type SubAdminInput struct {
	OrgID               string
	Name                string
	Email               string
	Password            string
	SecurityGroup       string
	Permissions         []string
	AssignedLocationIDs []string
}

// CreateSubAdmin registers a sub-admin, expanding its security group into the
// flat permission list persisted on the record.
func (s *DirectoryService) CreateSubAdmin(ctx context.Context, in SubAdminInput) (*domain.SubAdmin, error) {
	if in.OrgID == "" || in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.NewInvalidInput("org_id, name, email, and password are required", nil)
	}
	if _, err := s.orgs.GetByID(ctx, in.OrgID); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	perms := permission.GroupPermissions(in.SecurityGroup)
	if in.SecurityGroup != "" && perms == nil {
		return nil, apperrors.NewInvalidInput("unknown security group", map[string]any{"security_group": in.SecurityGroup})
	}
	for _, p := range in.Permissions {
		if !permission.Known(p) {
			return nil, apperrors.NewInvalidInput("unknown permission", map[string]any{"permission": p})
		}
		perms = appendUnique(perms, p)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	now := s.now().UTC()
	sub := &domain.SubAdmin{
		ID:                  uuid.NewString(),
		OrgID:               in.OrgID,
		Name:                in.Name,
		Email:               in.Email,
		PasswordHash:        hash,
		Permissions:         perms,
		AssignedLocationIDs: in.AssignedLocationIDs,
		Active:              true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.subAdmins.Create(ctx, sub); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sub, nil
}

// GetSubAdmin fetches a sub-admin by id.
func (s *DirectoryService) GetSubAdmin(ctx context.Context, id string) (*domain.SubAdmin, error) {
	sub, err := s.subAdmins.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return sub, nil
}

// ListSubAdmins returns the sub-admins of an organization.
func (s *DirectoryService) ListSubAdmins(ctx context.Context, orgID string) ([]domain.SubAdmin, error) {
	subs, err := s.subAdmins.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return subs, nil
}

// UpdateSubAdminAccess replaces a sub-admin's assigned locations and
// per-location tier overrides.
func (s *DirectoryService) UpdateSubAdminAccess(ctx context.Context, id string, locationIDs []string, overrides map[string]domain.LocationTierPermission) (*domain.SubAdmin, error) {
	sub, err := s.subAdmins.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	sub.AssignedLocationIDs = locationIDs
	if overrides != nil {
		sub.LocationTierPermissions = overrides
	}
	sub.UpdatedAt = s.now().UTC()
	if err := s.subAdmins.Update(ctx, sub); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return sub, nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
