package converter

// CartRedisModel — формат записи cart-storage:<session>.
type CartRedisModel struct {
	Items                  []CartItemRedisModel      `json:"items"`
	SelectedShippingMethod *ShippingMethodRedisModel `json:"selectedShippingMethod"`
}

type CartItemRedisModel struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    string  `json:"price"`
	Currency string  `json:"currency"`
	Image    string  `json:"image"`
	Weight   float64 `json:"weight"`
	Quantity int     `json:"quantity"`
}

type ShippingMethodRedisModel struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Price             string `json:"price"`
	Currency          string `json:"currency"`
	MinDeliveryTime   int    `json:"min_delivery_time"`
	MaxDeliveryTime   int    `json:"max_delivery_time"`
	Carrier           string `json:"carrier"`
	ServicePointInput string `json:"service_point_input"`
}
