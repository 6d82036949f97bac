package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует список способов доставки перевозчика.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	key    string
	logger logger.Logger
}

// NewCacheRepo создаёт кэш. carrier входит в ключ, чтобы смена перевозчика не читала чужой список.
func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, carrier string, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		key:    shippingMethodsKey(carrier),
		logger: logger,
	}
}

// GetMethods возвращает закэшированный список. При промахе кэша возвращает (nil, nil).
func (c *CacheRepo) GetMethods(ctx context.Context) ([]domain.ShippingMethod, error) {
	val, err := c.client.Client.Get(ctx, c.key).Result()
	if errors.Is(err, r.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	data, err := redisValueToBytes(val, c.key)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []converter.ShippingMethodRedisModel
	if err := json.Unmarshal(data, &models); err != nil {
		c.logger.Warnf("Redis unmarshal failed, dropping key %s: %v", c.key, e.Wrap(whereami.WhereAmI(), err))
		if err := c.client.Client.Del(ctx, c.key).Err(); err != nil {
			c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, nil
	}

	return converter.ShippingMethodsToDomain(models), nil
}

// SetMethods кладёт список в кэш на MethodsTTL. Пустой список не кэшируется.
func (c *CacheRepo) SetMethods(ctx context.Context, methods []domain.ShippingMethod) error {
	if len(methods) == 0 {
		return nil
	}

	data, err := json.Marshal(converter.ShippingMethodsToRedisModels(methods))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.SetBytes(ctx, c.key, data, c.cfg.MethodsTTL); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// shippingMethodsKey возвращает Redis-ключ списка способов доставки
func shippingMethodsKey(carrier string) string {
	return fmt.Sprintf("shipping-methods:%s", strings.ToLower(carrier))
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
