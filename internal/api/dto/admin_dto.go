package dto

import "github.com/fixdesk/maintenance-service/internal/domain"

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse payload.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	SubjectID string      `json:"subject_id"`
	Role      domain.Role `json:"role"`
}

// CreateOrganizationRequest payload.
type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

// CreateVendorRequest payload.
type CreateVendorRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	OrgIDs   []string `json:"org_ids"`
	Tier     int      `json:"tier"`
}

// CreateLocationRequest payload.
type CreateLocationRequest struct {
	OrgID   string `json:"org_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// CreateTechnicianRequest payload.
type CreateTechnicianRequest struct {
	VendorID string `json:"vendor_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// VendorStatusRequest payload.
type VendorStatusRequest struct {
	Status domain.VendorStatus `json:"status"`
}

// SubAdminAccessRequest replaces a sub-admin's location assignment and tier
// overrides.
type SubAdminAccessRequest struct {
	AssignedLocationIDs     []string                                 `json:"assigned_location_ids"`
	LocationTierPermissions map[string]domain.LocationTierPermission `json:"location_tier_permissions,omitempty"`
}

// CreateSubAdminRequest payload. Either a security group or an explicit
// permission list may be given; the group's bundle is expanded server-side.
type CreateSubAdminRequest struct {
	OrgID               string   `json:"org_id"`
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	Password            string   `json:"password"`
	SecurityGroup       string   `json:"security_group,omitempty"`
	Permissions         []string `json:"permissions,omitempty"`
	AssignedLocationIDs []string `json:"assigned_location_ids,omitempty"`
}
