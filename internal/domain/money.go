package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// MinorUnits переводит сумму в минорные единицы валюты (центы), округляя до целого.
func MinorUnits(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}
