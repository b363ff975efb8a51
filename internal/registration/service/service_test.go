package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"account-gateway/internal/audit"
	"account-gateway/internal/email"
	"account-gateway/internal/identity"
	"account-gateway/internal/profile"
	"account-gateway/internal/registration"
	"account-gateway/internal/registration/emaillock"
	dErrors "account-gateway/pkg/domain-errors"
)

// callLog records the order of external calls so tests can assert both call
// counts and sequencing.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.calls...)
}

func (l *callLog) count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type instrumentedProvider struct {
	inner *identity.MemoryProvider
	log   *callLog
}

func (p *instrumentedProvider) Create(ctx context.Context, acc identity.NewAccount) (*identity.Account, error) {
	p.log.add("identity.create")
	return p.inner.Create(ctx, acc)
}

func (p *instrumentedProvider) LookupByEmail(ctx context.Context, email string) (*identity.Account, error) {
	p.log.add("identity.lookup")
	return p.inner.LookupByEmail(ctx, email)
}

func (p *instrumentedProvider) Delete(ctx context.Context, id string) error {
	p.log.add("identity.delete")
	return p.inner.Delete(ctx, id)
}

func (p *instrumentedProvider) VerificationLink(ctx context.Context, email string) (string, error) {
	p.log.add("identity.verification_link")
	return p.inner.VerificationLink(ctx, email)
}

func (p *instrumentedProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	p.log.add("identity.reset_link")
	return p.inner.PasswordResetLink(ctx, email)
}

type instrumentedStore struct {
	inner    *profile.MemoryStore
	log      *callLog
	failFind error
}

func (s *instrumentedStore) Add(ctx context.Context, rec *profile.Record) (*profile.Record, error) {
	s.log.add("profile.add")
	return s.inner.Add(ctx, rec)
}

func (s *instrumentedStore) FindByIdentity(ctx context.Context, identityID string) ([]*profile.Record, error) {
	s.log.add("profile.find")
	if s.failFind != nil {
		return nil, s.failFind
	}
	return s.inner.FindByIdentity(ctx, identityID)
}

func (s *instrumentedStore) Delete(ctx context.Context, recordID string) error {
	s.log.add("profile.delete")
	return s.inner.Delete(ctx, recordID)
}

type fakeDispatcher struct {
	log  *callLog
	fail error
	mu   sync.Mutex
	sent []email.Message
}

func (d *fakeDispatcher) Send(_ context.Context, msg email.Message) (string, error) {
	d.log.add("email.send")
	if d.fail != nil {
		return "", d.fail
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return "msg_test", nil
}

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	log        *callLog
	provider   *instrumentedProvider
	store      *instrumentedStore
	dispatcher *fakeDispatcher
	locker     *emaillock.LocalLocker
	auditor    *audit.MemoryPublisher
	service    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.log = &callLog{}
	s.provider = &instrumentedProvider{inner: identity.NewMemoryProvider(), log: s.log}
	s.store = &instrumentedStore{inner: profile.NewMemoryStore(), log: s.log}
	s.dispatcher = &fakeDispatcher{log: s.log}
	s.locker = emaillock.NewLocalLocker()
	s.auditor = audit.NewMemoryPublisher()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.provider, s.store, s.dispatcher, s.locker, s.auditor, logger, nil)
}

func endUserReq(emailAddr string) registration.UserRegistration {
	return registration.UserRegistration{Email: emailAddr, Password: "secret123", Username: "Ada"}
}

func riderReq(emailAddr string) registration.RiderRegistration {
	return registration.RiderRegistration{
		Email: emailAddr, Password: "secret123", Phone: "0800",
		Surname: "Ade", Firstname: "Bola", School: "Unilag", Address: "12 Main St",
	}
}

func vendorReq(emailAddr string) registration.VendorRegistration {
	return registration.VendorRegistration{
		Email: emailAddr, Password: "secret123", Phone: "0800",
		Surname: "Ade", Firstname: "Bola", BusinessName: "Bola Foods",
		BusinessCategory: "food", School: "Unilag", Address: "12 Main St",
		ProfilePic: "https://cdn/x.png",
	}
}

func (s *ServiceSuite) TestMissingFieldsMakeNoExternalCalls() {
	_, err := s.service.RegisterUser(s.ctx, registration.UserRegistration{Email: "a@x.com", Password: "pw"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.service.RegisterVendor(s.ctx, registration.VendorRegistration{Email: "a@x.com", Password: "pw"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.service.RegisterRider(s.ctx, registration.RiderRegistration{Email: "a@x.com"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	s.Empty(s.log.snapshot(), "validation failures must not touch any external system")
}

func (s *ServiceSuite) TestFreshRegistrationCreatesIdentityProfileAndEmailInOrder() {
	msg, err := s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().NoError(err)
	s.Equal("User registered successfully. Verification email sent.", msg)

	s.Equal([]string{
		"identity.lookup",
		"identity.create",
		"profile.add",
		"identity.verification_link",
		"email.send",
	}, s.log.snapshot())

	account, err := s.provider.inner.LookupByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	records, err := s.store.inner.FindByIdentity(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(profile.Role("end_user"), records[0].Role)
	s.EqualValues(0, records[0].Debt)
	s.Zero(records[0].OrderNumber)

	s.Require().Len(s.dispatcher.sent, 1)
	s.Equal("a@x.com", s.dispatcher.sent[0].To)
	s.Equal(1, strings.Count(s.dispatcher.sent[0].HTML, `href="`))

	s.Len(s.auditor.ByKind(audit.EventRegistered), 1)
}

func (s *ServiceSuite) TestReRegistrationReclaimsUnverifiedIdentity() {
	_, err := s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().NoError(err)
	old, err := s.provider.inner.LookupByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)

	_, err = s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().NoError(err)

	// The old identity's records must not reappear in the profile store.
	stale, err := s.store.inner.FindByIdentity(s.ctx, old.ID)
	s.Require().NoError(err)
	s.Empty(stale)

	current, err := s.provider.inner.LookupByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.NotEqual(old.ID, current.ID)
	records, err := s.store.inner.FindByIdentity(s.ctx, current.ID)
	s.Require().NoError(err)
	s.Len(records, 1)

	s.Len(s.auditor.ByKind(audit.EventReclaimed), 1)
}

func (s *ServiceSuite) TestVerifiedIdentityConflictsWithoutMutation() {
	_, err := s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().NoError(err)
	s.provider.inner.MarkVerified("a@x.com")
	account, err := s.provider.inner.LookupByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)

	before := s.log.count("")

	_, err = s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), "Email is already in use and verified. Please log in.")

	// Only the lookup happened; identity and profile are untouched.
	s.Equal(before+1, s.log.count(""))
	still, err := s.provider.inner.LookupByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(account.ID, still.ID)
	records, err := s.store.inner.FindByIdentity(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *ServiceSuite) TestDispatchFailureCompensates() {
	s.dispatcher.fail = errors.New("resend 503: upstream down")

	_, err := s.service.RegisterVendor(s.ctx, vendorReq("v@x.com"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable), "delivery failure must be distinguishable")

	// The identity and its profile no longer exist.
	_, err = s.provider.inner.LookupByEmail(s.ctx, "v@x.com")
	s.Error(err)
	s.Equal(1, s.log.count("profile.find"), "cascade queried profiles once")

	// The email is immediately registrable again.
	s.dispatcher.fail = nil
	_, err = s.service.RegisterVendor(s.ctx, vendorReq("v@x.com"))
	s.NoError(err)

	s.Len(s.auditor.ByKind(audit.EventCompensated), 1)
}

func (s *ServiceSuite) TestProfileQueryFailureStillDeletesIdentity() {
	_, err := s.service.RegisterRider(s.ctx, riderReq("r@x.com"))
	s.Require().NoError(err)

	// A failed profile query leaves at worst orphaned rows; it must not stop
	// the identity delete or fail the cascade.
	s.store.failFind = errors.New("store offline")
	msg, err := s.service.DeleteUnverified(s.ctx, "r@x.com")
	s.Require().NoError(err)
	s.Equal("Deleted unverified user successfully.", msg)

	_, err = s.provider.inner.LookupByEmail(s.ctx, "r@x.com")
	s.Error(err)
}

func (s *ServiceSuite) TestProfileQueryFailureDoesNotAbortReclaim() {
	_, err := s.service.RegisterRider(s.ctx, riderReq("r@x.com"))
	s.Require().NoError(err)
	stale, err := s.provider.inner.LookupByEmail(s.ctx, "r@x.com")
	s.Require().NoError(err)

	s.store.failFind = errors.New("store offline")
	msg, err := s.service.RegisterRider(s.ctx, riderReq("r@x.com"))
	s.Require().NoError(err)
	s.Equal("Rider registered successfully. Verification email sent.", msg)

	// The reclaimed identity was replaced despite the query failure.
	fresh, err := s.provider.inner.LookupByEmail(s.ctx, "r@x.com")
	s.Require().NoError(err)
	s.NotEqual(stale.ID, fresh.ID)
}

func (s *ServiceSuite) TestConcurrentRegistrationSerializedByLock() {
	release, err := s.locker.Acquire(s.ctx, "a@x.com")
	s.Require().NoError(err)

	_, err = s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Empty(s.log.snapshot(), "a held lock stops the flow before any external call")

	release()
	_, err = s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.NoError(err)
}

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

// barrierProvider holds every Create until all expected callers have finished
// their lookup, forcing the check-then-create window open.
type barrierProvider struct {
	identity.Provider
	barrier *sync.WaitGroup
}

func (p *barrierProvider) Create(ctx context.Context, acc identity.NewAccount) (*identity.Account, error) {
	p.barrier.Done()
	p.barrier.Wait()
	return p.Provider.Create(ctx, acc)
}

func (s *ServiceSuite) TestUnlockedConcurrentRegistrationHitsProviderConflict() {
	var barrier sync.WaitGroup
	barrier.Add(2)
	provider := &barrierProvider{Provider: s.provider, barrier: &barrier}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	unlocked := New(provider, s.store, s.dispatcher, nopLocker{}, s.auditor, logger, nil)

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := unlocked.RegisterUser(context.Background(), endUserReq("a@x.com"))
			errs <- err
		}()
	}
	first, second := <-errs, <-errs

	// Without the lock both lookups miss and both proceed to create. Exactly
	// one wins; the loser gets an opaque provider conflict instead of the
	// clean already-in-progress answer the locked path returns.
	failures := 0
	for _, err := range []error{first, second} {
		if err != nil {
			failures++
			s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		}
	}
	s.Equal(1, failures)
	s.Equal(2, s.log.count("identity.lookup"))
	s.Equal(2, s.log.count("identity.create"))
}

func (s *ServiceSuite) TestEndUserLifecycleScenario() {
	// Fresh registration.
	_, err := s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().NoError(err)
	first, err := s.provider.inner.LookupByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	records, err := s.store.inner.FindByIdentity(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(profile.RoleEndUser, records[0].Role)
	s.EqualValues(0, records[0].Debt)
	s.Zero(records[0].OrderNumber)

	// Re-register before verification: old records gone, new identity present.
	_, err = s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().NoError(err)
	stale, err := s.store.inner.FindByIdentity(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Empty(stale)

	// Verified externally: further registration is refused.
	s.provider.inner.MarkVerified("a@x.com")
	_, err = s.service.RegisterUser(s.ctx, endUserReq("a@x.com"))
	s.Require().Error(err)
	s.Equal("Email is already in use and verified. Please log in.", dErrors.MessageFor(err))
}
