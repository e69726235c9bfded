package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-checkout/internal/application/checkout"
	"github.com/jhoicas/pos-checkout/internal/domain"
	"github.com/jhoicas/pos-checkout/internal/domain/allocation"
	"github.com/jhoicas/pos-checkout/pkg/config"
)

var _ checkout.SessionStore = (*RedisStore)(nil)

const (
	keyPrefix        = "checkout:allocation:"
	maxUpdateRetries = 5
)

// RedisStore guarda sesiones como snapshots JSON con TTL, compartidas entre instancias del API.
// Update usa WATCH/MULTI: si otra petición modificó la sesión en medio, se reintenta.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient crea el cliente a partir de la configuración.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisStore crea el store sobre un cliente ya construido; ttl <= 0 no expira.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Ping verifica la conexión.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Create(ctx context.Context, key string, s *allocation.Session) error {
	if s == nil {
		return fmt.Errorf("%w: sesión nil", domain.ErrInvalidInput)
	}
	payload, err := encode(s)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, redisKey(key), payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: la sesión %s ya existe", domain.ErrConflict, key)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (*allocation.Session, error) {
	raw, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decode(raw)
}

func (r *RedisStore) Update(ctx context.Context, key string, fn func(*allocation.Session) error) (*allocation.Session, error) {
	k := redisKey(key)
	var current *allocation.Session
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("redis get: %w", err)
		}
		s, err := decode(raw)
		if err != nil {
			return err
		}
		current = s
		if err := fn(s); err != nil {
			return err
		}
		var payload []byte
		if !s.State().IsTerminal() {
			if payload, err = encode(s); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if payload == nil {
				pipe.Del(ctx, k)
				return nil
			}
			pipe.Set(ctx, k, payload, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		current = nil
		err := r.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return current, err
	}
	return nil, fmt.Errorf("%w: la sesión %s cambió durante la actualización", domain.ErrConflict, key)
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, redisKey(key)).Err()
}

func redisKey(key string) string {
	return keyPrefix + key
}

func encode(s *allocation.Session) ([]byte, error) {
	payload, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("serializar sesión: %w", err)
	}
	return payload, nil
}

func decode(raw []byte) (*allocation.Session, error) {
	var snap allocation.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("deserializar sesión: %w", err)
	}
	return allocation.Restore(snap)
}
