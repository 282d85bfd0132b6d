// Package permission holds the static permission vocabulary and the
// security-group bundles built from it. Pure data, no behavior beyond lookups.
package permission

// Permission identifiers recognized by the access guard and HTTP layer.
const (
	SubAdminAssignLocation     = "subadmin.assignLocation"
	SubAdminAcceptTicket       = "subadmin.acceptTicket"
	SubAdminTier2AcceptTicket  = "subadmin.tier2AcceptTicket"
	SubAdminTier3AcceptTicket  = "subadmin.tier3AcceptTicket"
	SubAdminVerifyJobCompleted = "subadmin.verifyJobCompleted"
	SubAdminApproveTicket      = "subadmin.approveTicket"
	SubAdminPlaceTicket        = "subadmin.placeTicket"
	SubAdminManageVendors      = "subadmin.manageVendors"
	SubAdminManageLocations    = "subadmin.manageLocations"
	SubAdminViewReports        = "subadmin.viewReports"
)

// Descriptions maps each permission identifier to its human description.
var Descriptions = map[string]string{
	SubAdminAssignLocation:     "Manage location assignments and act across all locations of the organization",
	SubAdminAcceptTicket:       "Accept and dispatch tier 1 tickets at accessible locations",
	SubAdminTier2AcceptTicket:  "Accept and dispatch tier 2 tickets at accessible locations",
	SubAdminTier3AcceptTicket:  "Accept and dispatch tier 3 tickets at accessible locations",
	SubAdminVerifyJobCompleted: "Verify completed work and close tickets",
	SubAdminApproveTicket:      "Approve newly placed tickets",
	SubAdminPlaceTicket:        "Place maintenance tickets",
	SubAdminManageVendors:      "Create and update vendor records",
	SubAdminManageLocations:    "Create and update location records",
	SubAdminViewReports:        "View ticket and vendor reports",
}

// SecurityGroups bundles permissions under role-template names used when
// provisioning sub-admins.
var SecurityGroups = map[string][]string{
	"location-manager": {
		SubAdminPlaceTicket,
		SubAdminAcceptTicket,
	},
	"regional-manager": {
		SubAdminPlaceTicket,
		SubAdminAcceptTicket,
		SubAdminTier2AcceptTicket,
		SubAdminApproveTicket,
		SubAdminVerifyJobCompleted,
	},
	"operations-director": {
		SubAdminAssignLocation,
		SubAdminPlaceTicket,
		SubAdminAcceptTicket,
		SubAdminTier2AcceptTicket,
		SubAdminTier3AcceptTicket,
		SubAdminApproveTicket,
		SubAdminVerifyJobCompleted,
		SubAdminManageVendors,
		SubAdminManageLocations,
		SubAdminViewReports,
	},
	"auditor": {
		SubAdminViewReports,
	},
}

// Known reports whether the identifier is part of the permission vocabulary.
func Known(perm string) bool {
	_, ok := Descriptions[perm]
	return ok
}

// GroupPermissions returns the bundle for a security group, or nil when the
// group name is unknown.
func GroupPermissions(group string) []string {
	perms, ok := SecurityGroups[group]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
