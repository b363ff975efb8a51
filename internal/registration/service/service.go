// Package service implements the registration lifecycle: reconciling identity
// provider state, profile store state, and email delivery outcome into a
// single consistent pending-verification account, with compensating cleanup
// when any step fails partway.
package service

import (
	"context"
	"errors"
	"log/slog"

	"account-gateway/internal/audit"
	"account-gateway/internal/email"
	"account-gateway/internal/identity"
	"account-gateway/internal/platform/metrics"
	"account-gateway/internal/profile"
	"account-gateway/internal/registration"
	"account-gateway/internal/registration/emaillock"
	dErrors "account-gateway/pkg/domain-errors"
	"account-gateway/pkg/platform/sentinel"
)

const conflictVerifiedMsg = "Email is already in use and verified. Please log in."

// Service orchestrates the identity provider, profile store and email
// dispatcher per role. All dependencies are injected so tests can substitute
// fakes; there is no ambient state.
type Service struct {
	identities identity.Provider
	profiles   profile.Store
	dispatcher email.Dispatcher
	locks      emaillock.Locker
	audit      audit.Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func New(
	identities identity.Provider,
	profiles profile.Store,
	dispatcher email.Dispatcher,
	locks emaillock.Locker,
	auditor audit.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	return &Service{
		identities: identities,
		profiles:   profiles,
		dispatcher: dispatcher,
		locks:      locks,
		audit:      auditor,
		logger:     logger,
		metrics:    m,
	}
}

// RegisterUser registers a regular end user and dispatches a verification
// email. Returns the client-facing confirmation message.
func (s *Service) RegisterUser(ctx context.Context, req registration.UserRegistration) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	rec := &profile.Record{
		Email:     req.Email,
		Role:      profile.RoleEndUser,
		Firstname: req.Username,
		Surname:   req.Surname,
		Phone:     req.Phone,
		School:    req.School,
	}
	return s.register(ctx, registrationPlan{
		email:       req.Email,
		password:    req.Password,
		displayName: req.Username,
		record:      rec,
		success:     "User registered successfully. Verification email sent.",
	})
}

// RegisterVendor registers a vendor account. Vendors start open with a zero
// balance.
func (s *Service) RegisterVendor(ctx context.Context, req registration.VendorRegistration) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	rec := &profile.Record{
		Email:            req.Email,
		Role:             profile.RoleVendor,
		Firstname:        req.Firstname,
		Surname:          req.Surname,
		Phone:            req.Phone,
		School:           req.School,
		Address:          req.Address,
		BusinessName:     req.BusinessName,
		BusinessCategory: req.BusinessCategory,
		ProfilePic:       req.ProfilePic,
		Status:           "open",
	}
	return s.register(ctx, registrationPlan{
		email:       req.Email,
		password:    req.Password,
		displayName: req.Firstname,
		record:      rec,
		success:     "Vendor registered successfully. Verification email sent.",
	})
}

// RegisterRider registers a delivery rider.
func (s *Service) RegisterRider(ctx context.Context, req registration.RiderRegistration) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	rec := &profile.Record{
		Email:     req.Email,
		Role:      profile.RoleRider,
		Firstname: req.Firstname,
		Surname:   req.Surname,
		Phone:     req.Phone,
		School:    req.School,
		Address:   req.Address,
	}
	return s.register(ctx, registrationPlan{
		email:    req.Email,
		password: req.Password,
		record:   rec,
		success:  "Rider registered successfully. Verification email sent.",
	})
}

type registrationPlan struct {
	email       string
	password    string
	displayName string
	record      *profile.Record
	success     string
}

func (s *Service) register(ctx context.Context, plan registrationPlan) (string, error) {
	role := string(plan.record.Role)

	release, err := s.locks.Acquire(ctx, plan.email)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.countRegistration(role, "locked")
			return "", dErrors.New(dErrors.CodeConflict, "A registration for this email is already in progress. Please retry shortly.")
		}
		s.countRegistration(role, "error")
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialize registration")
	}
	defer release()

	// Existing-account branch. A lookup miss is the normal path for a new
	// email; anything except not-found propagates.
	existing, err := s.identities.LookupByEmail(ctx, plan.email)
	switch {
	case err == nil && existing.EmailVerified:
		s.countRegistration(role, "conflict")
		return "", dErrors.New(dErrors.CodeConflict, conflictVerifiedMsg)
	case err == nil:
		// Unverified duplicate: reclaimable.
		if err := s.cascadeDelete(ctx, existing); err != nil {
			s.countRegistration(role, "error")
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to reclaim unverified account")
		}
		if s.metrics != nil {
			s.metrics.ReclaimsTotal.Inc()
		}
		s.audit.Emit(ctx, audit.Event{Kind: audit.EventReclaimed, Email: plan.email, IdentityID: existing.ID, Role: role})
	case errors.Is(err, sentinel.ErrNotFound):
		// New email, proceed.
	case errors.Is(err, sentinel.ErrInvalidInput):
		s.countRegistration(role, "invalid")
		return "", dErrors.New(dErrors.CodeBadRequest, "The email address is improperly formatted.")
	default:
		s.countRegistration(role, "error")
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up existing account")
	}

	account, err := s.identities.Create(ctx, identity.NewAccount{
		Email:       plan.email,
		Password:    plan.password,
		DisplayName: plan.displayName,
	})
	if err != nil {
		s.countRegistration(role, "error")
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	plan.record.IdentityID = account.ID
	if _, err := s.profiles.Add(ctx, plan.record); err != nil {
		// The identity exists without a profile, a state that must not be
		// left standing. Roll it back before surfacing the failure.
		s.compensate(ctx, account, role)
		s.countRegistration(role, "error")
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create profile")
	}

	link, err := s.identities.VerificationLink(ctx, plan.email)
	if err != nil {
		s.compensate(ctx, account, role)
		s.countRegistration(role, "error")
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification link")
	}

	displayName := plan.displayName
	if displayName == "" {
		displayName = plan.record.Firstname
	}
	msg, err := email.VerificationEmail(plan.email, link, displayName)
	if err != nil {
		s.compensate(ctx, account, role)
		s.countRegistration(role, "error")
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to render verification email")
	}

	if _, err := s.dispatcher.Send(ctx, msg); err != nil {
		s.countEmail("verification", "failure")
		s.compensate(ctx, account, role)
		s.countRegistration(role, "delivery_failed")
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "Verification email could not be sent. Please retry registration.")
	}
	s.countEmail("verification", "success")

	s.countRegistration(role, "success")
	s.audit.Emit(ctx, audit.Event{Kind: audit.EventRegistered, Email: plan.email, IdentityID: account.ID, Role: role})
	return plan.success, nil
}

// compensate rolls back a freshly created identity after a downstream step
// failed. Its own failure is logged and counted, never returned: the caller
// must still receive the original error.
func (s *Service) compensate(ctx context.Context, account *identity.Account, role string) {
	if s.metrics != nil {
		s.metrics.CompensationsTotal.Inc()
	}
	if err := s.cascadeDelete(ctx, account); err != nil {
		if s.metrics != nil {
			s.metrics.CompensationFailures.Inc()
		}
		s.logger.ErrorContext(ctx, "compensation failed, account requires out-of-band sweep",
			"identity_id", account.ID,
			"error", err.Error(),
		)
		return
	}
	s.audit.Emit(ctx, audit.Event{Kind: audit.EventCompensated, Email: account.Email, IdentityID: account.ID, Role: role})
}

func (s *Service) countRegistration(role, outcome string) {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(role, outcome).Inc()
	}
}

func (s *Service) countEmail(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.EmailDispatchTotal.WithLabelValues(kind, outcome).Inc()
	}
}
