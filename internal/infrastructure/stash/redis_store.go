// Package stash almacenes de ventas pendientes de confirmación (Redis o memoria).
package stash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.PendingSaleRepository = (*RedisStore)(nil)

// NewRedisClient crea el cliente desde REDIS_URL y valida la conexión al arrancar.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// RedisStore guarda cada venta pendiente como JSON con TTL. Take usa GETDEL: de dos
// confirmaciones concurrentes solo una recibe el valor. Sirve con varias réplicas de la API.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisStore construye el almacén; prefix se antepone a cada clave.
func NewRedisStore(rdb redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Save(ctx context.Context, key string, p *entity.PendingSale, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("serializar venta pendiente: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("guardar venta pendiente: %w", err)
	}
	return nil
}

// SaveIfAbsent usa SET NX: Redis ya descartó las claves vencidas por su TTL.
func (s *RedisStore) SaveIfAbsent(ctx context.Context, key string, p *entity.PendingSale, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("serializar venta pendiente: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, s.key(key), data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("restaurar venta pendiente: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*entity.PendingSale, error) {
	data, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	return decode(data, err)
}

func (s *RedisStore) Take(ctx context.Context, key string) (*entity.PendingSale, error) {
	data, err := s.rdb.GetDel(ctx, s.key(key)).Bytes()
	return decode(data, err)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("borrar venta pendiente: %w", err)
	}
	return nil
}

func decode(data []byte, err error) (*entity.PendingSale, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer venta pendiente: %w", err)
	}
	var p entity.PendingSale
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("deserializar venta pendiente: %w", err)
	}
	return &p, nil
}
