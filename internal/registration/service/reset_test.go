package service

import (
	"errors"

	"account-gateway/internal/audit"
	dErrors "account-gateway/pkg/domain-errors"
)

func (s *ServiceSuite) TestResetRefusedForUnverifiedIdentity() {
	_, err := s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().NoError(err)

	_, err = s.service.ForgotPassword(s.ctx, "a@x.com")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Zero(s.log.count("identity.reset_link"), "no reset token may be requested for an unverified identity")
}

func (s *ServiceSuite) TestResetUnknownEmailIsNotFound() {
	_, err := s.service.ForgotPassword(s.ctx, "ghost@x.com")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("No user found with this email address.", dErrors.MessageFor(err))
}

func (s *ServiceSuite) TestResetMissingEmailIsBadRequest() {
	_, err := s.service.ForgotPassword(s.ctx, "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Empty(s.log.snapshot())
}

func (s *ServiceSuite) TestResetVerifiedIdentityDispatchesEmail() {
	_, err := s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().NoError(err)
	s.provider.inner.MarkVerified("a@x.com")

	msg, err := s.service.ForgotPassword(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal("Password reset email sent successfully.", msg)

	s.Require().Len(s.dispatcher.sent, 2)
	reset := s.dispatcher.sent[1]
	s.Equal("Reset your password", reset.Subject)
	s.Equal("a@x.com", reset.To)

	s.Len(s.auditor.ByKind(audit.EventResetRequested), 1)
}

func (s *ServiceSuite) TestResetDispatchFailureHasNoCompensation() {
	_, err := s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().NoError(err)
	s.provider.inner.MarkVerified("a@x.com")

	s.dispatcher.fail = errors.New("resend 500")
	_, err = s.service.ForgotPassword(s.ctx, "a@x.com")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	// No account was created in this flow, so nothing was deleted.
	account, lookupErr := s.provider.inner.LookupByEmail(s.ctx, "a@x.com")
	s.Require().NoError(lookupErr)
	s.True(account.EmailVerified)
	s.Zero(s.log.count("identity.delete"))
}
