package carrier

import (
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	FallbackCurrency   = "EUR"
	FallbackCarrier    = "fallback"
	FallbackStandardID = int64(1)
	FallbackExpressID  = int64(2)
)

type rateTier struct {
	base  decimal.Decimal
	perKg decimal.Decimal
}

var (
	tierNorthAmerica = rateTier{base: decimal.NewFromInt(25), perKg: decimal.NewFromInt(3)}
	tierUKIreland    = rateTier{base: decimal.NewFromInt(15), perKg: decimal.NewFromInt(2)}
	tierEurope       = rateTier{base: decimal.NewFromInt(12), perKg: decimal.RequireFromString("1.5")}

	expressFactor = decimal.RequireFromString("1.5")
)

// tierFor выбирает тариф по стране назначения. Страны вне списков считаются по европейскому тарифу.
func tierFor(country string) rateTier {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "US", "CA":
		return tierNorthAmerica
	case "GB", "IE":
		return tierUKIreland
	default:
		return tierEurope
	}
}

// FallbackPrice — детерминированная цена стандартной доставки: base + perKg * вес, до 2 знаков.
func FallbackPrice(country string, weightKg float64) decimal.Decimal {
	t := tierFor(country)
	return t.base.Add(t.perKg.Mul(decimal.NewFromFloat(weightKg))).Round(2)
}

// FallbackRates возвращает набор Standard и Express, когда API перевозчика недоступен.
func FallbackRates(country string, weightKg float64) []domain.ShippingMethod {
	standard := FallbackPrice(country, weightKg)
	express := standard.Mul(expressFactor).Round(2)

	return []domain.ShippingMethod{
		{
			ID:                FallbackStandardID,
			Name:              "Standard",
			Price:             standard.StringFixed(2),
			Currency:          FallbackCurrency,
			MinDeliveryTime:   3,
			MaxDeliveryTime:   5,
			Carrier:           FallbackCarrier,
			ServicePointInput: "none",
		},
		{
			ID:                FallbackExpressID,
			Name:              "Express",
			Price:             express.StringFixed(2),
			Currency:          FallbackCurrency,
			MinDeliveryTime:   1,
			MaxDeliveryTime:   2,
			Carrier:           FallbackCarrier,
			ServicePointInput: "none",
		},
	}
}
