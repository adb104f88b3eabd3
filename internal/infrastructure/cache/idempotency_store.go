package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-api/internal/application/sales"
)

const (
	keyPrefix     = "pos:checkout:idempotency:"
	pendingMarker = "pending"
)

var _ sales.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore guarda en Redis la relación Idempotency-Key → id de orden.
// Mientras el primer cobro está en curso la clave vale "pending".
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store. ttl <= 0 usa 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// NewClient abre un cliente a partir de una URL redis:// y verifica la conexión.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: url inválida: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	k := keyPrefix + key
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("redis: reservar clave: %w", err)
		}
		if ok {
			return "", true, nil
		}
		val, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			// expiró entre SETNX y GET
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("redis: leer clave: %w", err)
		}
		if val == pendingMarker {
			return "", false, nil
		}
		return val, false, nil
	}
	return "", false, nil
}

// Complete asocia la clave con la orden confirmada y renueva el TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	if err := s.client.Set(ctx, keyPrefix+key, orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: completar clave: %w", err)
	}
	return nil
}

// Release libera la clave para que un reintento pueda cobrar.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis: liberar clave: %w", err)
	}
	return nil
}
