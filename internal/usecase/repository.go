package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type CatalogRepository interface {
	GetProduct(id string) (domain.Product, bool)
	GetProductsByCategory(category domain.Category) []domain.Product
	GetAccessoriesForProduct(mainID string) []domain.Product
	ValidateProductID(id string) bool
	ListProducts() []domain.Product
}

// CartRepository хранит сериализованный снимок корзины сессии.
// Load возвращает (nil, nil), если корзина ещё не сохранялась.
type CartRepository interface {
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart domain.Cart) error
}

// ShippingMethodsCache кэширует список способов доставки перевозчика.
type ShippingMethodsCache interface {
	GetMethods(ctx context.Context) ([]domain.ShippingMethod, error)
	SetMethods(ctx context.Context, methods []domain.ShippingMethod) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReleaseStuck(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ReceiptRepository interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// TxManager выполняет fn в транзакции, которую репозитории достают из контекста.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
