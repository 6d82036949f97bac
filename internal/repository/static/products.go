package static

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// ID совпадают с идентификаторами товаров у платёжного провайдера.
const (
	ProductLumenOne       = "prod_lumen_one"
	ProductLumenMini      = "prod_lumen_mini"
	ProductLumenPro       = "prod_lumen_pro"
	ProductWallMount      = "prod_wall_mount"
	ProductTravelCase     = "prod_travel_case"
	ProductDiffuserDome   = "prod_diffuser_dome"
	ProductChargingDock   = "prod_charging_dock"
	ProductReplacementLED = "prod_replacement_led"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// products — таблица каталога. Порядок определяет порядок выдачи.
var products = []domain.Product{
	{
		ID:          ProductLumenOne,
		Name:        "Lumen One",
		Price:       price("249.00"),
		Currency:    "EUR",
		Weight:      1.8,
		Image:       "https://images.lumen.example/lumen-one.png",
		Description: "Modular smart lamp with a printed aluminium body.",
		Category:    domain.CategoryMain,
	},
	{
		ID:          ProductLumenMini,
		Name:        "Lumen Mini",
		Price:       price("149.00"),
		Currency:    "EUR",
		Weight:      0.9,
		Image:       "https://images.lumen.example/lumen-mini.png",
		Description: "Compact desk version of Lumen One.",
		Category:    domain.CategoryMain,
	},
	{
		ID:          ProductLumenPro,
		Name:        "Lumen Pro",
		Price:       price("399.00"),
		Currency:    "EUR",
		Weight:      2.6,
		Image:       "https://images.lumen.example/lumen-pro.png",
		Description: "Studio floor lamp with high-CRI light engine.",
		Category:    domain.CategoryMain,
	},
	{
		ID:             ProductWallMount,
		Name:           "Wall Mount",
		Price:          price("29.00"),
		Currency:       "EUR",
		Weight:         0.3,
		Image:          "https://images.lumen.example/wall-mount.png",
		Category:       domain.CategoryAccessory,
		CompatibleWith: []string{ProductLumenOne, ProductLumenMini},
	},
	{
		ID:             ProductTravelCase,
		Name:           "Travel Case",
		Price:          price("39.00"),
		Currency:       "EUR",
		Weight:         0.5,
		Image:          "https://images.lumen.example/travel-case.png",
		Category:       domain.CategoryAccessory,
		CompatibleWith: []string{ProductLumenMini},
	},
	{
		ID:             ProductDiffuserDome,
		Name:           "Diffuser Dome",
		Price:          price("24.50"),
		Currency:       "EUR",
		Weight:         0.2,
		Image:          "https://images.lumen.example/diffuser-dome.png",
		Category:       domain.CategoryAccessory,
		CompatibleWith: []string{ProductLumenOne, ProductLumenPro},
	},
	{
		ID:             ProductChargingDock,
		Name:           "Charging Dock",
		Price:          price("49.00"),
		Currency:       "EUR",
		Weight:         0.4,
		Image:          "https://images.lumen.example/charging-dock.png",
		Category:       domain.CategoryAccessory,
		CompatibleWith: []string{ProductLumenOne, ProductLumenMini, ProductLumenPro},
	},
	{
		ID:             ProductReplacementLED,
		Name:           "Replacement LED Module",
		Price:          price("59.00"),
		Currency:       "EUR",
		Weight:         0.1,
		Image:          "https://images.lumen.example/led-module.png",
		Description:    "Drop-in light engine for Lumen Pro.",
		Category:       domain.CategoryAccessory,
		CompatibleWith: []string{ProductLumenPro},
	},
}
