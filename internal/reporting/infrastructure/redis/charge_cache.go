// Package redis caches charge entries in Redis in front of a slower source.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"contract-ledger/internal/observability/logging"
	reporting "contract-ledger/internal/reporting/domain"
)

const (
	defaultKeyPrefix = "contract-ledger:charges:"
	defaultTTL       = 10 * time.Minute
)

// ChargeSource is the upstream being cached.
type ChargeSource interface {
	ChargeEntries(ctx context.Context, periodID reporting.PeriodID) ([]reporting.ChargeEntry, error)
}

// ChargeCache is a read-through cache of per-period charge entries.
// Cache failures degrade to the upstream source.
type ChargeCache struct {
	client goredis.UniversalClient
	source ChargeSource
	prefix string
	ttl    time.Duration
	logger *logging.Logger
}

// Option configures the cache.
type Option func(*ChargeCache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *ChargeCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(c *ChargeCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *ChargeCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChargeCache wraps source with a Redis cache.
func NewChargeCache(client goredis.UniversalClient, source ChargeSource, opts ...Option) (*ChargeCache, error) {
	if client == nil {
		return nil, errors.New("charge cache: nil redis client")
	}
	if source == nil {
		return nil, errors.New("charge cache: nil source")
	}
	c := &ChargeCache{
		client: client,
		source: source,
		prefix: defaultKeyPrefix,
		ttl:    defaultTTL,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type cachedEntry struct {
	ChargeDate    time.Time       `json:"charge_date"`
	MonthlyCharge decimal.Decimal `json:"monthly_charge"`
}

// ChargeEntries serves from Redis, falling back to the source on a miss.
func (c *ChargeCache) ChargeEntries(ctx context.Context, periodID reporting.PeriodID) ([]reporting.ChargeEntry, error) {
	key := c.prefix + periodID.String()

	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []cachedEntry
		if err := json.Unmarshal(payload, &cached); err == nil {
			return fromCached(periodID, cached), nil
		}
		c.logger.Warnw("charge cache payload corrupt", "periodID", periodID)
	case !errors.Is(err, goredis.Nil):
		c.logger.Warnw("charge cache read failed", "periodID", periodID, "error", err)
	}

	entries, err := c.source.ChargeEntries(ctx, periodID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, entries)
	return entries, nil
}

// Invalidate drops the cached entries of a period.
func (c *ChargeCache) Invalidate(ctx context.Context, periodID reporting.PeriodID) error {
	return c.client.Del(ctx, c.prefix+periodID.String()).Err()
}

func (c *ChargeCache) store(ctx context.Context, key string, entries []reporting.ChargeEntry) {
	cached := make([]cachedEntry, 0, len(entries))
	for _, entry := range entries {
		cached = append(cached, cachedEntry{ChargeDate: entry.ChargeDate, MonthlyCharge: entry.MonthlyCharge})
	}
	payload, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warnw("charge cache write failed", "key", key, "error", err)
	}
}

func fromCached(periodID reporting.PeriodID, cached []cachedEntry) []reporting.ChargeEntry {
	entries := make([]reporting.ChargeEntry, 0, len(cached))
	for _, entry := range cached {
		entries = append(entries, reporting.ChargeEntry{
			PeriodID:      periodID,
			ChargeDate:    entry.ChargeDate.UTC(),
			MonthlyCharge: entry.MonthlyCharge,
		})
	}
	return entries
}
