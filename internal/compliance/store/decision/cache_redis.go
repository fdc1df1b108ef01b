package decision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"fleetgate/internal/compliance/ports"
	"fleetgate/internal/domain"
)

const decisionKeyPrefix = "fg:decision:"

// RedisCache is a read-through layer over a durable DecisionStore. Gets hit
// Redis first and fall back to the inner store on a miss; writes go to the
// inner store first and only then to Redis, so a Redis outage can never serve
// a decision the database does not have.
//
// Fingerprint lookups always go to the inner store: a chassis collision scan
// has no useful key shape in Redis.
type RedisCache struct {
	inner  ports.DecisionStore
	client *redis.Client
	logger *slog.Logger
	now    ports.Clock
}

// NewRedisCache wraps inner with a Redis read-through cache.
func NewRedisCache(inner ports.DecisionStore, client *redis.Client, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RedisCache{inner: inner, client: client, logger: logger, now: time.Now}
}

func decisionKey(registrationNumber, operatorID string) string {
	return decisionKeyPrefix + registrationNumber + ":" + operatorID
}

func (c *RedisCache) Upsert(ctx context.Context, decision domain.ComplianceDecision) error {
	if err := c.inner.Upsert(ctx, decision); err != nil {
		return err
	}

	ttl := decision.CacheExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("marshal decision for cache: %w", err)
	}
	if err := c.client.Set(ctx, decisionKey(decision.RegistrationNumber, decision.OperatorID), payload, ttl).Err(); err != nil {
		// The durable write already succeeded; a cache write failure is a
		// slow path, not an error.
		c.logger.WarnContext(ctx, "decision cache write failed",
			"registration_number", decision.RegistrationNumber, "error", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, registrationNumber, operatorID string) (*domain.ComplianceDecision, error) {
	payload, err := c.client.Get(ctx, decisionKey(registrationNumber, operatorID)).Bytes()
	if err == nil {
		var decision domain.ComplianceDecision
		if unmarshalErr := json.Unmarshal(payload, &decision); unmarshalErr == nil {
			return &decision, nil
		}
		// Corrupt entry: fall through to the durable store.
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "decision cache read failed",
			"registration_number", registrationNumber, "error", err)
	}

	decision, err := c.inner.Get(ctx, registrationNumber, operatorID)
	if err != nil {
		return nil, err
	}

	if ttl := decision.CacheExpiresAt.Sub(c.now()); ttl > 0 {
		if payload, marshalErr := json.Marshal(decision); marshalErr == nil {
			_ = c.client.Set(ctx, decisionKey(registrationNumber, operatorID), payload, ttl).Err()
		}
	}
	return decision, nil
}

func (c *RedisCache) FindByFingerprint(ctx context.Context, chassisHash, engineHash, excludeRC, excludeOperator string) (*domain.ComplianceDecision, error) {
	return c.inner.FindByFingerprint(ctx, chassisHash, engineHash, excludeRC, excludeOperator)
}
