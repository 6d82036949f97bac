package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type CatalogUC interface {
	ListProducts(ctx context.Context) []domain.ProductView
	GetProduct(ctx context.Context, id string) (*domain.ProductView, error)
	GetProductsByCategory(ctx context.Context, category domain.Category) []domain.ProductView
	GetAccessoriesForProduct(ctx context.Context, mainID string) []domain.ProductView
}

type CartUC interface {
	Get(ctx context.Context, sessionID string) domain.Cart
	AddItem(ctx context.Context, sessionID string, productID string) (domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID string) domain.Cart
	UpdateQuantity(ctx context.Context, sessionID string, productID string, qty int) domain.Cart
	Clear(ctx context.Context, sessionID string) domain.Cart
	SetShippingMethod(ctx context.Context, sessionID string, method *domain.ShippingMethod) domain.Cart
	Subscribe(ctx context.Context, sessionID string) (<-chan domain.Cart, func())
}

type ShippingUC interface {
	GetShippingRates(ctx context.Context, req *ShippingRatesReq) ([]domain.ShippingMethod, error)
}

type PaymentUC interface {
	CreateCheckoutSession(ctx context.Context, req *CreateCheckoutSessionReq) (*CreateCheckoutSessionRes, error)
	CreatePaymentIntent(ctx context.Context, req *CreatePaymentIntentReq) (*CreatePaymentIntentRes, error)
}

type CheckoutUC interface {
	Start(ctx context.Context, cartSessionID string) (*domain.CheckoutSession, error)
	Get(ctx context.Context, cartSessionID, checkoutID string) (*domain.CheckoutSession, error)
	SubmitAddress(ctx context.Context, cartSessionID, checkoutID string, addr domain.Address) (*domain.CheckoutSession, error)
	SelectShippingMethod(ctx context.Context, cartSessionID, checkoutID string, methodID int64) (*domain.CheckoutSession, error)
	ProceedToPayment(ctx context.Context, cartSessionID, checkoutID string) (*domain.CheckoutSession, error)
	Back(ctx context.Context, cartSessionID, checkoutID string, step domain.CheckoutStep) (*domain.CheckoutSession, error)
	ConfirmPayment(ctx context.Context, cartSessionID, checkoutID string, billing *domain.Address) (*ConfirmPaymentRes, error)
}

type OrderUC interface {
	RecordOrder(ctx context.Context, order *domain.Order) error
}
