package http

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/shopspring/decimal"
)

// CartResponse — корзина с вычисленными итогами.
type CartResponse struct {
	Items                  []domain.CartItem      `json:"items"`
	SelectedShippingMethod *domain.ShippingMethod `json:"selectedShippingMethod"`
	Total                  string                 `json:"total"`
	ItemCount              int                    `json:"itemCount"`
	TotalWithShipping      string                 `json:"totalWithShipping"`
}

func NewCartResponse(cart domain.Cart) *CartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}

	return &CartResponse{
		Items:                  items,
		SelectedShippingMethod: cart.SelectedShippingMethod,
		Total:                  cart.Total().StringFixed(2),
		ItemCount:              cart.ItemCount(),
		TotalWithShipping:      cart.TotalWithShipping().StringFixed(2),
	}
}

type AddItemRequest struct {
	ID string `json:"id"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type SetShippingMethodRequest struct {
	Method *domain.ShippingMethod `json:"method"`
}

type ShippingRatesRequest struct {
	ShippingAddress domain.Address `json:"shippingAddress"`
	Weight          float64        `json:"weight"`
}

type ShippingRatesResponse struct {
	ShippingRates []domain.ShippingMethod `json:"shippingRates"`
}

type LineItemRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type CheckoutSessionRequest struct {
	Items      []LineItemRequest `json:"items"`
	SuccessURL string            `json:"successUrl"`
	CancelURL  string            `json:"cancelUrl"`
}

type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

type PaymentIntentRequest struct {
	Items        []LineItemRequest `json:"items"`
	Currency     string            `json:"currency"`
	ShippingCost decimal.Decimal   `json:"shippingCost"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type SelectShippingMethodRequest struct {
	MethodID int64 `json:"methodId"`
}

type BackRequest struct {
	Step domain.CheckoutStep `json:"step"`
}

type ConfirmRequest struct {
	BillingAddress *domain.Address `json:"billingAddress"`
}

type ConfirmResponse struct {
	CheckoutID  string `json:"checkoutId"`
	OrderID     string `json:"orderId"`
	RedirectURL string `json:"redirectUrl"`
}

func toLineItems(items []LineItemRequest) []usecase.LineItemReq {
	res := make([]usecase.LineItemReq, 0, len(items))
	for _, it := range items {
		res = append(res, usecase.LineItemReq{ID: it.ID, Quantity: it.Quantity})
	}

	return res
}
