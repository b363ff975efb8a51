package service

import (
	"context"
	"errors"

	"account-gateway/internal/audit"
	dErrors "account-gateway/pkg/domain-errors"
	"account-gateway/pkg/platform/sentinel"
)

// DeleteUnverified purges an unverified account on demand: the identity and
// every profile record referencing it. A verified account is refused with no
// mutation.
func (s *Service) DeleteUnverified(ctx context.Context, emailAddr string) (string, error) {
	if emailAddr == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "No email provided.")
	}

	account, err := s.identities.LookupByEmail(ctx, emailAddr)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return "", dErrors.New(dErrors.CodeNotFound, "No user found with this email address.")
		case errors.Is(err, sentinel.ErrInvalidInput):
			return "", dErrors.New(dErrors.CodeBadRequest, "The email address is improperly formatted.")
		default:
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
		}
	}

	if account.EmailVerified {
		return "", dErrors.New(dErrors.CodeConflict, "User is already verified.")
	}

	if err := s.cascadeDelete(ctx, account); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete unverified account")
	}
	if s.metrics != nil {
		s.metrics.UnverifiedDeletes.Inc()
	}

	s.audit.Emit(ctx, audit.Event{Kind: audit.EventDeleted, Email: emailAddr, IdentityID: account.ID})
	return "Deleted unverified user successfully.", nil
}
