package usecase

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// SHIPPING

// ShippingRatesReq — запрос расчёта доставки для адреса и веса посылки.
type ShippingRatesReq struct {
	ShippingAddress domain.Address
	Weight          float64 // кг
}

// PAYMENT

// LineItemReq — позиция, присланная клиентом. Цена всегда берётся из каталога.
type LineItemReq struct {
	ID       string
	Quantity int
}

type CreateCheckoutSessionReq struct {
	Items      []LineItemReq
	SuccessURL string
	CancelURL  string
}

type CreateCheckoutSessionRes struct {
	URL string
}

type CreatePaymentIntentReq struct {
	Items        []LineItemReq
	Currency     string
	ShippingCost decimal.Decimal
}

type CreatePaymentIntentRes struct {
	ClientSecret string
}

// ConfirmPaymentRes — результат успешного оформления.
type ConfirmPaymentRes struct {
	CheckoutID  string
	OrderID     string
	RedirectURL string
}

// INFRASTRUCTURE

// PaymentLineItem — позиция в запросе к платёжному провайдеру (суммы в минорных единицах).
type PaymentLineItem struct {
	ProductID       string
	Name            string
	UnitAmountMinor int64
	Quantity        int
	Currency        string
}

type PaymentCheckoutSessionReq struct {
	Items      []PaymentLineItem
	SuccessURL string
	CancelURL  string
}

type PaymentIntentReq struct {
	AmountMinor       int64
	ShippingCostMinor int64
	Currency          string
	Items             []PaymentLineItem
	IdempotencyKey    string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
}

type ConfirmPaymentReq struct {
	IntentID  string
	Billing   domain.Address
	Shipping  domain.Address
	ReturnURL string
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
	Headers map[string]string
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	OrderCompleted OutboxEventType = "order.completed"
)

// OutboxEvent — событие, ожидающее публикации в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewShippingRatesReq(addr domain.Address, weight float64) *ShippingRatesReq {
	return &ShippingRatesReq{
		ShippingAddress: addr,
		Weight:          weight,
	}
}

func NewWriteRawMessageReq(key string, payload []byte, headers map[string]string) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
		Headers: headers,
	}
}

func NewPaymentLineItem(item domain.CartItem) PaymentLineItem {
	return PaymentLineItem{
		ProductID:       item.ID,
		Name:            item.Name,
		UnitAmountMinor: domain.MinorUnits(item.Price),
		Quantity:        item.Quantity,
		Currency:        item.Currency,
	}
}

func NewPaymentLineItems(items []domain.CartItem) []PaymentLineItem {
	res := make([]PaymentLineItem, 0, len(items))
	for _, item := range items {
		res = append(res, NewPaymentLineItem(item))
	}

	return res
}
