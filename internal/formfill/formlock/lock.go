// internal/formfill/formlock/lock.go
package formlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLocked = errors.New("OUTPUT_LOCKED")

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another worker is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serialises writers of the same output path across workers.
type Locker struct {
	client   *redis.Client
	prefix   string
	newToken func() string
}

type Option func(*Locker)

func WithPrefix(prefix string) Option {
	return func(l *Locker) { l.prefix = prefix }
}

func WithTokenSource(fn func() string) Option {
	return func(l *Locker) { l.newToken = fn }
}

func NewLocker(client *redis.Client, opts ...Option) *Locker {
	l := &Locker{
		client:   client,
		prefix:   "formfill:lock:",
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire takes the lock on key for ttl and returns the token needed to
// release it. A held lock yields ErrLocked.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := l.newToken()
	ok, err := l.client.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrLocked, key)
	}
	return token, nil
}

// Release drops the lock if token still owns it. Releasing an expired or
// foreign lock is not an error.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + key}, token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
