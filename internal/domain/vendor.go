package domain

import "time"

// VendorStatus enumerates vendor availability.
type VendorStatus string

const (
	VendorStatusActive   VendorStatus = "active"
	VendorStatusInactive VendorStatus = "inactive"
)

// Vendor is an external service provider. Tier is a classification/display
// attribute only; no access guard consults it.
type Vendor struct {
	ID           string       `bson:"_id" json:"id"`
	Name         string       `bson:"name" json:"name"`
	Email        string       `bson:"email" json:"email"`
	PasswordHash string       `bson:"password_hash" json:"-"`
	OrgIDs       []string     `bson:"org_ids" json:"org_ids"`
	Tier         int          `bson:"tier" json:"tier"`
	Status       VendorStatus `bson:"status" json:"status"`
	CreatedAt    time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `bson:"updated_at" json:"updated_at"`
}

// InOrg reports whether the vendor belongs to the given organization.
func (v *Vendor) InOrg(orgID string) bool {
	for _, id := range v.OrgIDs {
		if id == orgID {
			return true
		}
	}
	return false
}
