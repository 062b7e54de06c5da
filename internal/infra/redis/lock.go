package redis

import (
	"context"
	"time"

	"tariff-billing-service/internal/domain"
	"tariff-billing-service/internal/usecase"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Ensure the locker satisfies the use-case port.
var _ usecase.Locker = (*Locker)(nil)

// Locker is a redis SetNX mutex keyed per service aggregate. Start,
// stop, change and renewal all read-then-write the same rows, so they
// must not interleave on one service.
type Locker struct {
	cli *redis.Client
}

func NewLocker(c *Client) *Locker {
	return &Locker{cli: c.cli}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for i := 0; i < 5; i++ { // 5 tries
		ok, err := l.cli.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			continue
		}
		if ok {
			return token, nil
		}
		time.Sleep(50 * time.Millisecond) // wait before retrying
	}
	return "", domain.ErrLockNotAcquired
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *Locker) Unlock(ctx context.Context, key, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{key}, token).Result()
	return err
}
