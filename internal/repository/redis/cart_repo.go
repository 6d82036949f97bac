package redis

import (
	"context"
	"encoding/json"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
)

const cartKeyPrefix = "cart-storage:"

// CartRepo хранит по одной записи корзины на сессию. TTL продлевается при каждой записи.
type CartRepo struct {
	client *clients.RedisClient
	conv   converter.CartConverter
	cfg    *cfg.RedisCfg
}

func NewCartRepo(client *clients.RedisClient, cfg *cfg.RedisCfg) *CartRepo {
	return &CartRepo{
		client: client,
		cfg:    cfg,
	}
}

// Load возвращает сохранённую корзину или (nil, nil), если записи нет.
func (c *CartRepo) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, found, err := c.client.GetBytes(ctx, cartKey(sessionID))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if !found {
		return nil, nil
	}

	var model converter.CartRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cart := c.conv.ToDomain(model)
	return &cart, nil
}

func (c *CartRepo) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	data, err := json.Marshal(c.conv.ToRedisModel(cart))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.SetBytes(ctx, cartKey(sessionID), data, c.cfg.CartTTL); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// cartKey возвращает Redis-ключ корзины сессии
func cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}
