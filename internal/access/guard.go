// Package access implements the pure guard predicates deciding whether an
// actor may operate on a location or ticket. Guards evaluate snapshots handed
// to them; they never touch storage.
package access

import (
	"github.com/fixdesk/maintenance-service/internal/domain"
	"github.com/fixdesk/maintenance-service/internal/permission"
)

// Policy carries the explicit authorization policy knobs.
type Policy struct {
	// EmptyAssignmentGrantsAll controls what an empty AssignedLocationIDs
	// list means. When true (the historical behavior), a sub-admin without
	// an explicit assignment list is treated as an unrestricted
	// administrator provided they hold subadmin.assignLocation. When false,
	// an empty list means no location access at all.
	EmptyAssignmentGrantsAll bool
}

// Guard evaluates access predicates under a fixed policy.
type Guard struct {
	policy Policy
}

// NewGuard builds a guard with the given policy.
func NewGuard(policy Policy) *Guard {
	return &Guard{policy: policy}
}

// HasLocationAccess reports whether the sub-admin may act at the location.
func (g *Guard) HasLocationAccess(sub *domain.SubAdmin, locationID string) bool {
	if sub == nil {
		return false
	}
	if len(sub.AssignedLocationIDs) > 0 {
		for _, id := range sub.AssignedLocationIDs {
			if id == locationID {
				return true
			}
		}
		return false
	}
	if !g.policy.EmptyAssignmentGrantsAll {
		return false
	}
	return sub.HasPermission(permission.SubAdminAssignLocation)
}

// HasTicketTierAccess reports whether the sub-admin may accept/dispatch a
// ticket of the given tier at the location. A per-location override, when
// present, takes precedence over the global tier permissions.
func (g *Guard) HasTicketTierAccess(sub *domain.SubAdmin, locationID string, tier int) bool {
	if !g.HasLocationAccess(sub, locationID) {
		return false
	}
	if !sub.HasPermission(permission.SubAdminAcceptTicket) {
		return false
	}
	if override, ok := sub.LocationTierPermissions[locationID]; ok {
		if !override.AcceptTicket {
			return false
		}
		for _, t := range override.Tiers {
			if t == tier {
				return true
			}
		}
		return false
	}
	switch tier {
	case 1:
		return true
	case 2:
		return sub.HasPermission(permission.SubAdminTier2AcceptTicket)
	case 3:
		return sub.HasPermission(permission.SubAdminTier3AcceptTicket)
	default:
		return false
	}
}

// AccessibleLocations filters the organization's locations down to those the
// sub-admin may act at. Sub-admins holding subadmin.assignLocation, or with no
// explicit assignment under the permissive policy, see every location.
func (g *Guard) AccessibleLocations(sub *domain.SubAdmin, orgLocations []domain.Location) []domain.Location {
	if sub == nil {
		return nil
	}
	unrestricted := sub.HasPermission(permission.SubAdminAssignLocation) ||
		(len(sub.AssignedLocationIDs) == 0 && g.policy.EmptyAssignmentGrantsAll)
	if unrestricted {
		out := make([]domain.Location, len(orgLocations))
		copy(out, orgLocations)
		return out
	}
	assigned := make(map[string]struct{}, len(sub.AssignedLocationIDs))
	for _, id := range sub.AssignedLocationIDs {
		assigned[id] = struct{}{}
	}
	var out []domain.Location
	for _, loc := range orgLocations {
		if _, ok := assigned[loc.ID]; ok {
			out = append(out, loc)
		}
	}
	return out
}
