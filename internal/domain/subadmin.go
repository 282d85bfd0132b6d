package domain

import "time"

// LocationTierPermission is a per-location override of a sub-admin's tier
// acceptance rights.
type LocationTierPermission struct {
	AcceptTicket bool  `bson:"accept_ticket" json:"accept_ticket"`
	Tiers        []int `bson:"tiers" json:"tiers"`
}

// SubAdmin is an organization-scoped operator with location-restricted ticket
// rights.
type SubAdmin struct {
	ID           string `bson:"_id" json:"id"`
	OrgID        string `bson:"org_id" json:"org_id"`
	Name         string `bson:"name" json:"name"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password_hash" json:"-"`

	// Permissions is the flat set of permission identifiers held globally.
	Permissions []string `bson:"permissions" json:"permissions"`

	// AssignedLocationIDs restricts the sub-admin to specific locations.
	// An empty list is interpreted per the access policy configuration.
	AssignedLocationIDs []string `bson:"assigned_location_ids" json:"assigned_location_ids"`

	// LocationTierPermissions overrides tier acceptance per location id.
	LocationTierPermissions map[string]LocationTierPermission `bson:"location_tier_permissions,omitempty" json:"location_tier_permissions,omitempty"`

	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasPermission reports whether the sub-admin holds the given permission.
func (s *SubAdmin) HasPermission(perm string) bool {
	for _, p := range s.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
