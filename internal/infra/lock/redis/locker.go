package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"staybook/internal/app/policies"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a single-instance Redis lock (SET NX PX with a token-checked
// release). TTL bounds how long a crashed holder blocks the key.
type Locker struct {
	Client *redis.Client
	TTL    time.Duration
	// Wait caps how long Lock polls before giving up with ErrLockNotAcquired.
	Wait  time.Duration
	Retry time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{Client: client, TTL: ttl}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, l.wait())
	defer cancel()

	ticker := time.NewTicker(l.retry())
	defer ticker.Stop()
	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.ttl()).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", policies.ErrLockNotAcquired, key)
			}
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(key, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", policies.ErrLockNotAcquired, key)
		case <-ticker.C:
		}
	}
}

func (l *Locker) releaser(key, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.Client, []string{key}, token).Err()
	}
}

func (l *Locker) Ping(ctx context.Context) error {
	return l.Client.Ping(ctx).Err()
}

func (l *Locker) ttl() time.Duration {
	if l.TTL <= 0 {
		return 10 * time.Second
	}
	return l.TTL
}

func (l *Locker) wait() time.Duration {
	if l.Wait <= 0 {
		return l.ttl()
	}
	return l.Wait
}

func (l *Locker) retry() time.Duration {
	if l.Retry <= 0 {
		return 25 * time.Millisecond
	}
	return l.Retry
}

var _ policies.Locker = (*Locker)(nil)
