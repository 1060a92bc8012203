package storage

import (
	"context"
	"errors"
	"time"

	"francoggm/vnpay-go-redis/internal/models"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const (
	correlationKeyPrefix = "vnpay:correlation:"
	responseKeyPrefix    = "vnpay:response:"

	DefaultResponseTTL = 24 * time.Hour
)

// RedisCorrelationStore keeps correlation entries as Redis hashes so every
// instance behind the load balancer sees the same context.
type RedisCorrelationStore struct {
	cache *redis.Client
}

func NewRedisCorrelationStore(cache *redis.Client) *RedisCorrelationStore {
	return &RedisCorrelationStore{
		cache: cache,
	}
}

func (s *RedisCorrelationStore) Put(ctx context.Context, requestCode string, fields map[string]string, ttl time.Duration) error {
	key := correlationKeyPrefix + requestCode

	values := make(map[string]any, len(fields))
	for field, value := range fields {
		values[field] = value
	}

	_, err := s.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		pipe.Expire(ctx, key, ttl)
		return nil
	})

	return err
}

func (s *RedisCorrelationStore) Fetch(ctx context.Context, requestCode string) (map[string]string, error) {
	fields, err := s.cache.HGetAll(ctx, correlationKeyPrefix+requestCode).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, nil
	}

	return fields, nil
}

// RedisResponseStore records the last response seen per flow and request code.
type RedisResponseStore struct {
	cache *redis.Client
	ttl   time.Duration
}

func NewRedisResponseStore(cache *redis.Client, ttl time.Duration) *RedisResponseStore {
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}

	return &RedisResponseStore{
		cache: cache,
		ttl:   ttl,
	}
}

func (s *RedisResponseStore) SaveResponse(ctx context.Context, flow string, response *models.PaymentResponse) error {
	payload, err := marshalResponse(response)
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, responseKey(flow, response.RequestCode), payload, s.ttl).Err()
}

func (s *RedisResponseStore) GetResponse(ctx context.Context, flow, requestCode string) (*models.PaymentResponse, error) {
	payload, err := s.cache.Get(ctx, responseKey(flow, requestCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var response models.PaymentResponse
	if err := sonic.ConfigFastest.Unmarshal(payload, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

func marshalResponse(response *models.PaymentResponse) ([]byte, error) {
	data, err := sonic.ConfigFastest.Marshal(response)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func responseKey(flow, requestCode string) string {
	return responseKeyPrefix + flow + "-" + requestCode
}
