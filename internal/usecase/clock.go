package usecase

import (
	"context"
	"time"
)

// Clock supplies "now" to the use cases so all date arithmetic stays
// deterministic under test. Production wiring passes time.Now.
type Clock func() time.Time

// Locker serializes mutating operations per service aggregate. The
// redis implementation backs it in production; tests use an in-memory
// stub.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
