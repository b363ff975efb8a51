// Package emaillock serializes registration attempts per email address. Two
// concurrent attempts for the same unverified email could otherwise both pass
// the lookup check before either deletes or creates; the lock closes that
// window without a distributed transaction.
package emaillock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"account-gateway/pkg/platform/sentinel"
)

// Locker grants an exclusive, TTL-bounded hold on one email address.
// Acquire returns sentinel.ErrConflict when the address is already held.
type Locker interface {
	Acquire(ctx context.Context, email string) (release func(), err error)
}

func key(email string) string {
	return "reglock:" + strings.ToLower(strings.TrimSpace(email))
}

// RedisLocker implements Locker with SET NX EX. The TTL bounds how long a
// crashed request can hold an address hostage.
type RedisLocker struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisLocker(client redis.Cmdable, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// releaseScript deletes the lock only when it is still ours, so an expired
// lock re-acquired by another request is never released from here.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *RedisLocker) Acquire(ctx context.Context, email string) (func(), error) {
	k := key(email)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sentinel.ErrConflict
	}
	release := func() {
		_ = releaseScript.Run(context.Background(), l.client, []string{k}, token).Err()
	}
	return release, nil
}

// LocalLocker is the in-process fallback when Redis is not configured. It
// only excludes requests within one process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) Acquire(_ context.Context, email string) (func(), error) {
	k := key(email)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[k]; taken {
		return nil, sentinel.ErrConflict
	}
	l.held[k] = struct{}{}
	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, k)
	}
	return release, nil
}
