// Package identity wraps the external identity provider: the system of record
// for credentials, email-verification state, and action-link issuance.
package identity

import "context"

// Account is the provider's view of an account. EmailVerified is an external
// fact fetched on demand; it is never authoritative when cached locally.
type Account struct {
	ID            string
	Email         string
	DisplayName   string
	EmailVerified bool
}

// NewAccount carries the fields needed to create a provider account.
type NewAccount struct {
	Email       string
	Password    string
	DisplayName string
}

// Provider is the port the lifecycle manager depends on. Implementations map
// provider-specific error codes to sentinel errors at this boundary:
// LookupByEmail returns sentinel.ErrNotFound on a miss and
// sentinel.ErrInvalidInput when the provider rejects the address itself.
type Provider interface {
	Create(ctx context.Context, acc NewAccount) (*Account, error)
	LookupByEmail(ctx context.Context, email string) (*Account, error)
	Delete(ctx context.Context, id string) error
	VerificationLink(ctx context.Context, email string) (string, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
}
