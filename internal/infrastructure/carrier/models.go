package carrier

import "github.com/DRSN-tech/storefront/internal/domain"

// shippingMethodsResponse — ответ GET /shipping_methods.
type shippingMethodsResponse struct {
	ShippingMethods []shippingMethodModel `json:"shipping_methods"`
}

type shippingMethodModel struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Carrier           string `json:"carrier"`
	ServicePointInput string `json:"service_point_input"`
	MinDeliveryTime   int    `json:"min_delivery_time"`
	MaxDeliveryTime   int    `json:"max_delivery_time"`
}

// shippingPriceModel — элемент ответа GET /shipping-price.
type shippingPriceModel struct {
	Price     *string `json:"price"`
	Currency  string  `json:"currency"`
	ToCountry string  `json:"to_country"`
}

func (m shippingMethodModel) toDomain() domain.ShippingMethod {
	minDays, maxDays := m.MinDeliveryTime, m.MaxDeliveryTime
	if minDays <= 0 {
		minDays = 1
	}
	if maxDays < minDays {
		maxDays = minDays + 2
	}

	return domain.ShippingMethod{
		ID:                m.ID,
		Name:              m.Name,
		Carrier:           m.Carrier,
		ServicePointInput: m.ServicePointInput,
		MinDeliveryTime:   minDays,
		MaxDeliveryTime:   maxDays,
	}
}
