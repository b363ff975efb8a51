package service

import (
	"context"
	"errors"

	"account-gateway/internal/audit"
	"account-gateway/internal/email"
	dErrors "account-gateway/pkg/domain-errors"
	"account-gateway/pkg/platform/sentinel"
)

// ForgotPassword dispatches a password reset email. A reset is never issued
// to an unverified identity: it has not proven mailbox ownership. Unlike
// registration, a dispatch failure here leaves no partial state, so there is
// nothing to compensate.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) (string, error) {
	if emailAddr == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "Please provide your email address.")
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

	if !account.EmailVerified {
		return "", dErrors.New(dErrors.CodeBadRequest, "Your email is not verified. Please verify your email before resetting your password.")
	}

	link, err := s.identities.PasswordResetLink(ctx, emailAddr)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate reset link")
	}

	msg, err := email.PasswordResetEmail(emailAddr, link, account.DisplayName)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to render reset email")
	}

	if _, err := s.dispatcher.Send(ctx, msg); err != nil {
		s.countEmail("reset", "failure")
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "Password reset email could not be sent. Please try again.")
	}
	s.countEmail("reset", "success")
	if s.metrics != nil {
		s.metrics.ResetEmailsTotal.Inc()
	}

	s.audit.Emit(ctx, audit.Event{Kind: audit.EventResetRequested, Email: emailAddr, IdentityID: account.ID})
	return "Password reset email sent successfully.", nil
}
