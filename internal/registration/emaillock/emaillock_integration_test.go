//go:build integration

package emaillock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-gateway/internal/registration/emaillock"
	"account-gateway/pkg/platform/sentinel"
	"account-gateway/pkg/testutil/containers"
)

func TestRedisLockerExclusionAndExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.NewRedisContainer(t)
	locker := emaillock.NewRedisLocker(rc.Client, 2*time.Second)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "A@x.com")
	assert.True(t, errors.Is(err, sentinel.ErrConflict))

	release()
	release2, err := locker.Acquire(ctx, "a@x.com")
	require.NoError(t, err)
	defer release2()

	// A second release of the first hold must not free the new hold.
	release()
	_, err = locker.Acquire(ctx, "a@x.com")
	assert.True(t, errors.Is(err, sentinel.ErrConflict))
}

func TestRedisLockerTTLFreesCrashedHolds(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.NewRedisContainer(t)
	locker := emaillock.NewRedisLocker(rc.Client, 500*time.Millisecond)
	ctx := context.Background()

	_, err := locker.Acquire(ctx, "crash@x.com")
	require.NoError(t, err)

	// Never released; the TTL must reclaim it.
	require.Eventually(t, func() bool {
		release, err := locker.Acquire(ctx, "crash@x.com")
		if err != nil {
			return false
		}
		release()
		return true
	}, 3*time.Second, 100*time.Millisecond)
}
