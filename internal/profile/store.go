package profile

import "context"

// Store is the port for profile persistence. Add assigns the record ID and
// JoinedAt server-side. FindByIdentity returns zero or more matches; the
// store does not promise uniqueness per identity. Delete removes one record
// by ID and returns sentinel.ErrNotFound when it is already gone.
type Store interface {
	Add(ctx context.Context, rec *Record) (*Record, error)
	FindByIdentity(ctx context.Context, identityID string) ([]*Record, error)
	Delete(ctx context.Context, recordID string) error
}
