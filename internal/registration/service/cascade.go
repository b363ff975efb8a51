package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"account-gateway/internal/identity"
	"account-gateway/pkg/platform/sentinel"
)

// cascadeDelete removes every profile record referencing the account, then
// the account itself. Profile deletion is always driven by identity deletion,
// never the reverse: the identity provider is the authority for
// uniqueness-by-email.
//
// A failing profile query does not stop the identity delete; otherwise the
// email would be permanently unregistrable. The query failure is logged but
// not returned: orphaned profile rows are recoverable out of band, a lost
// identity delete is not. Delete failures are awaited and collected into one
// aggregated error.
func (s *Service) cascadeDelete(ctx context.Context, account *identity.Account) error {
	var errs []error

	records, err := s.profiles.FindByIdentity(ctx, account.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "profile query failed during cascade delete, continuing to identity",
			"identity_id", account.ID,
			"error", err.Error(),
		)
	}

	if len(records) > 0 {
		var g errgroup.Group
		var mu sync.Mutex
		for _, rec := range records {
			g.Go(func() error {
				err := s.profiles.Delete(ctx, rec.ID)
				if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
					mu.Lock()
					errs = append(errs, fmt.Errorf("delete profile %s: %w", rec.ID, err))
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := s.identities.Delete(ctx, account.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		errs = append(errs, fmt.Errorf("delete identity %s: %w", account.ID, err))
	}

	return errors.Join(errs...)
}
