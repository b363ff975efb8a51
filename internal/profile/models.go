// Package profile holds role-tagged account metadata, kept separate from
// credentials. The identity provider is the authority for uniqueness-by-email;
// this store only ever references identities, never the reverse.
package profile

import "time"

// Role tags a profile record with the kind of account it describes.
type Role string

const (
	RoleEndUser Role = "end_user"
	RoleVendor  Role = "vendor"
	RoleRider   Role = "rider"
)

// Record is one profile document. IdentityID references the provider account;
// the store does not enforce uniqueness on it, so reads and deletes tolerate
// zero or more matches.
type Record struct {
	ID         string
	IdentityID string
	Email      string
	Role       Role

	Firstname string
	Surname   string
	Phone     string
	School    string
	Address   string

	// Vendor-only fields.
	BusinessName     string
	BusinessCategory string
	ProfilePic       string
	Status           string

	// Running counters, zeroed at registration.
	OrderNumber int
	TotalOrders int
	Debt        int64
	Balance     int64

	// Display hint only; the identity provider owns the real flag.
	EmailVerified bool

	JoinedAt time.Time
}
