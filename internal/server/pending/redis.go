package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
)

const keyPrefix = "teenbudget:pending_signup:"

// maxTxRetries bounds optimistic transaction retries under contention.
const maxTxRetries = 5

// RedisStore keeps entries as JSON values with a native TTL of code
// lifetime plus retention, so an expired code is reported as expired for a
// while before the key disappears.
type RedisStore struct {
	client    redis.UniversalClient
	ttl       time.Duration
	retention time.Duration
	opts      options
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient, ttl, retention time.Duration, opts ...Option) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	if retention < 0 {
		retention = 0
	}
	return &RedisStore{
		client:    client,
		ttl:       ttl,
		retention: retention,
		opts:      buildOptions(opts),
	}
}

func key(email string) string {
	return keyPrefix + email
}

func (s *RedisStore) keyTTL() time.Duration {
	return s.ttl + s.retention
}

func (s *RedisStore) Begin(ctx context.Context, email string, profile Profile) (string, error) {
	code, err := s.opts.code()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(&entry{
		Code:      code,
		Profile:   profile,
		ExpiresAt: s.opts.now().Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("encode pending signup: %w", err)
	}

	if err := s.client.Set(ctx, key(email), data, s.keyTTL()).Err(); err != nil {
		return "", fmt.Errorf("redis error: %w", err)
	}
	return code, nil
}

func (s *RedisStore) Reissue(ctx context.Context, email string) (string, error) {
	code, err := s.opts.code()
	if err != nil {
		return "", err
	}

	k := key(email)
	err = s.watch(ctx, k, func(tx *redis.Tx) error {
		e, err := load(ctx, tx, k)
		if err != nil {
			return err
		}
		e.Code = code
		e.ExpiresAt = s.opts.now().Add(s.ttl)

		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode pending signup: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, data, s.keyTTL())
			return nil
		})
		return err
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *RedisStore) Consume(ctx context.Context, email, code string) (*Profile, error) {
	var profile *Profile

	k := key(email)
	err := s.watch(ctx, k, func(tx *redis.Tx) error {
		e, err := load(ctx, tx, k)
		if err != nil {
			return err
		}

		expired := e.expired(s.opts.now())
		if !expired && !e.matches(code) {
			return common.ErrCodeMismatch
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, k)
			return nil
		}); err != nil {
			return err
		}

		if expired {
			return common.ErrCodeExpired
		}
		p := e.Profile
		profile = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// watch runs fn in an optimistic transaction on k, retrying when another
// client modified the key in between.
func (s *RedisStore) watch(ctx context.Context, k string, fn func(*redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !isDomainError(err) {
			return fmt.Errorf("redis error: %w", err)
		}
		return err
	}
	return fmt.Errorf("redis error: %w", redis.TxFailedErr)
}

func load(ctx context.Context, tx *redis.Tx, k string) (*entry, error) {
	data, err := tx.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrNoPendingSignup
	}
	if err != nil {
		return nil, err
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode pending signup: %w", err)
	}
	return &e, nil
}

func isDomainError(err error) bool {
	return errors.Is(err, common.ErrNoPendingSignup) ||
		errors.Is(err, common.ErrCodeExpired) ||
		errors.Is(err, common.ErrCodeMismatch)
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
