package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tariff-billing-service/internal/domain/model"
	"tariff-billing-service/internal/domain/ports/repository"
)

// Ensure the cache still satisfies the repository port.
var _ repository.TarifRepository = (*TarifCache)(nil)

// TarifCache decorates a TarifRepository with a redis read cache for the
// list queries. Plans change rarely and are read on every
// available-tarifs call, so the lists are the hot path. Writes pass
// through and invalidate.
type TarifCache struct {
	inner repository.TarifRepository
	cli   RedisClient
	ttl   time.Duration
}

func NewTarifCache(inner repository.TarifRepository, cli RedisClient, ttl time.Duration) *TarifCache {
	return &TarifCache{inner: inner, cli: cli, ttl: ttl}
}

const tarifListKey = "tarifs:all"

func tarifGroupKey(groupID int) string { return fmt.Sprintf("tarifs:group:%d", groupID) }

func (c *TarifCache) Save(ctx context.Context, tx repository.Tx, t *model.Tarif) error {
	if err := c.inner.Save(ctx, tx, t); err != nil {
		return err
	}
	_ = c.cli.Del(ctx, tarifListKey, tarifGroupKey(t.GroupID))
	return nil
}

func (c *TarifCache) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Tarif, error) {
	return c.inner.FindByID(ctx, tx, id)
}

func (c *TarifCache) List(ctx context.Context, tx repository.Tx) ([]*model.Tarif, error) {
	return c.cachedList(ctx, tarifListKey, func() ([]*model.Tarif, error) {
		return c.inner.List(ctx, tx)
	})
}

func (c *TarifCache) ListByGroup(ctx context.Context, tx repository.Tx, groupID int) ([]*model.Tarif, error) {
	return c.cachedList(ctx, tarifGroupKey(groupID), func() ([]*model.Tarif, error) {
		return c.inner.ListByGroup(ctx, tx, groupID)
	})
}

func (c *TarifCache) cachedList(ctx context.Context, key string, load func() ([]*model.Tarif, error)) ([]*model.Tarif, error) {
	if raw, err := c.cli.Get(ctx, key); err == nil && raw != "" {
		var out []*model.Tarif
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out, nil
		}
		// corrupt entry, drop it and fall through
		_ = c.cli.Del(ctx, key)
	}

	out, err := load()
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		_ = c.cli.Set(ctx, key, string(b), c.ttl)
	}
	return out, nil
}
