package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"account-gateway/pkg/platform/sentinel"
)

// MemoryProvider is an in-process Provider for tests and local development.
// Email matching is case-insensitive, matching real provider behavior.
type MemoryProvider struct {
	mu       sync.RWMutex
	accounts map[string]*Account // keyed by ID
	linkBase string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]*Account),
		linkBase: "https://identity.local/action",
	}
}

func (p *MemoryProvider) Create(_ context.Context, acc NewAccount) (*Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.accounts {
		if strings.EqualFold(existing.Email, acc.Email) {
			return nil, sentinel.ErrConflict
		}
	}
	created := &Account{
		ID:          uuid.NewString(),
		Email:       acc.Email,
		DisplayName: acc.DisplayName,
	}
	p.accounts[created.ID] = created
	clone := *created
	return &clone, nil
}

func (p *MemoryProvider) LookupByEmail(_ context.Context, email string) (*Account, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, acc := range p.accounts {
		if strings.EqualFold(acc.Email, email) {
			clone := *acc
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (p *MemoryProvider) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(p.accounts, id)
	return nil
}

func (p *MemoryProvider) VerificationLink(_ context.Context, email string) (string, error) {
	return p.actionLink("verifyEmail", email)
}

func (p *MemoryProvider) PasswordResetLink(_ context.Context, email string) (string, error) {
	return p.actionLink("resetPassword", email)
}

func (p *MemoryProvider) actionLink(mode, email string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, acc := range p.accounts {
		if strings.EqualFold(acc.Email, email) {
			return fmt.Sprintf("%s?mode=%s&oobCode=%s", p.linkBase, mode, uuid.NewString()), nil
		}
	}
	return "", sentinel.ErrNotFound
}

// MarkVerified flips the verified flag out-of-band, standing in for the user
// completing the emailed link.
func (p *MemoryProvider) MarkVerified(email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, acc := range p.accounts {
		if strings.EqualFold(acc.Email, email) {
			acc.EmailVerified = true
			return true
		}
	}
	return false
}
