package service

import (
	"account-gateway/internal/audit"
	"account-gateway/internal/profile"
	dErrors "account-gateway/pkg/domain-errors"
)

func (s *ServiceSuite) TestDeleteUnverifiedRemovesIdentityAndProfiles() {
	_, err := s.service.RegisterRider(s.ctx, riderReq("r@x.com"))
	s.Require().NoError(err)
	account, err := s.provider.inner.LookupByEmail(s.ctx, "r@x.com")
	s.Require().NoError(err)

	// A duplicate record for the same identity is anomalous but must also go.
	_, err = s.store.inner.Add(s.ctx, &profile.Record{IdentityID: account.ID, Email: "r@x.com", Role: profile.RoleRider})
	s.Require().NoError(err)

	msg, err := s.service.DeleteUnverified(s.ctx, "r@x.com")
	s.Require().NoError(err)
	s.Equal("Deleted unverified user successfully.", msg)

	_, err = s.provider.inner.LookupByEmail(s.ctx, "r@x.com")
	s.Error(err)
	records, err := s.store.inner.FindByIdentity(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Empty(records)

	s.Len(s.auditor.ByKind(audit.EventDeleted), 1)
}

func (s *ServiceSuite) TestDeleteVerifiedIsRefusedWithoutMutation() {
	_, err := s.service.RegisterRider(s.ctx, riderReq("r@x.com"))
	s.Require().NoError(err)
	s.provider.inner.MarkVerified("r@x.com")
	account, err := s.provider.inner.LookupByEmail(s.ctx, "r@x.com")
	s.Require().NoError(err)

	_, err = s.service.DeleteUnverified(s.ctx, "r@x.com")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal("User is already verified.", dErrors.MessageFor(err))

	still, err := s.provider.inner.LookupByEmail(s.ctx, "r@x.com")
	s.Require().NoError(err)
	s.Equal(account.ID, still.ID)
	records, err := s.store.inner.FindByIdentity(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *ServiceSuite) TestDeleteMissingEmailIsBadRequest() {
	_, err := s.service.DeleteUnverified(s.ctx, "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Equal("No email provided.", dErrors.MessageFor(err))
	s.Empty(s.log.snapshot())
}
