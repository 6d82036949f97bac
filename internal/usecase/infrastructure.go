package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

// CarrierInfra — шлюз к API перевозчика. Никогда не возвращает ошибку и пустой список:
// при недоступности API используется локальный расчёт.
type CarrierInfra interface {
	GetShippingRates(ctx context.Context, parcel domain.Parcel) []domain.ShippingMethod
}

// PaymentInfra — клиент внешнего платёжного API.
type PaymentInfra interface {
	CreateCheckoutSession(ctx context.Context, req *PaymentCheckoutSessionReq) (string, error)
	CreatePaymentIntent(ctx context.Context, req *PaymentIntentReq) (*PaymentIntent, error)
	UpdatePaymentIntent(ctx context.Context, intentID string, amountMinor int64) error
	ConfirmPayment(ctx context.Context, req *ConfirmPaymentReq) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
