package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order — заказ, зафиксированный после успешной оплаты.
type Order struct {
	ID              string          `json:"id"`
	CheckoutID      string          `json:"checkout_id"`
	Items           []CartItem      `json:"items"`
	ShippingMethod  *ShippingMethod `json:"shipping_method"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	PaymentIntentID string          `json:"payment_intent_id"`
	ShippingAddress Address         `json:"shipping_address"`
	BillingAddress  Address         `json:"billing_address"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewOrder собирает заказ из снимка корзины.
func NewOrder(id, checkoutID string, cart Cart, currency, intentID string, shipping, billing Address) *Order {
	return &Order{
		ID:              id,
		CheckoutID:      checkoutID,
		Items:           append([]CartItem(nil), cart.Items...),
		ShippingMethod:  cart.SelectedShippingMethod,
		Subtotal:        cart.Total(),
		ShippingCost:    cart.ShippingCost(),
		Total:           cart.TotalWithShipping(),
		Currency:        currency,
		PaymentIntentID: intentID,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		CreatedAt:       time.Now().UTC(),
	}
}
