package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingMethod — способ доставки, полученный от перевозчика (или рассчитанный локально).
type ShippingMethod struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Price             string `json:"price"` // десятичная строка, например "13.50"
	Currency          string `json:"currency"`
	MinDeliveryTime   int    `json:"min_delivery_time"` // дни
	MaxDeliveryTime   int    `json:"max_delivery_time"`
	Carrier           string `json:"carrier"`
	ServicePointInput string `json:"service_point_input"`
}

// PriceDecimal разбирает Price. Пустая или некорректная строка даёт 0.
func (m ShippingMethod) PriceDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(m.Price))
	if err != nil {
		return decimal.Zero
	}

	return d
}

// Parcel — запрос на расчёт доставки: откуда, куда и сколько весит.
type Parcel struct {
	FromCountry    string
	FromPostalCode string
	ToCountry      string
	ToPostalCode   string
	WeightKg       float64
}

// WeightGrams возвращает вес в граммах, округлённый вверх до целого.
func (p Parcel) WeightGrams() int64 {
	return decimal.NewFromFloat(p.WeightKg).Mul(decimal.NewFromInt(1000)).Ceil().IntPart()
}
