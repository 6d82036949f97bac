package domain

import "github.com/shopspring/decimal"

// Product описывает товар каталога. Товары задаются при сборке и не меняются во время работы.
type Product struct {
	ID             string // совпадает с идентификатором товара у платёжного провайдера
	Name           string
	Price          decimal.Decimal
	Currency       string  // ISO 4217
	Weight         float64 // кг
	Image          string
	Description    string
	Category       Category
	CompatibleWith []string // для аксессуаров: ID основных товаров
}

// IsCompatibleWith сообщает, подходит ли аксессуар к основному товару mainID.
func (p Product) IsCompatibleWith(mainID string) bool {
	for _, id := range p.CompatibleWith {
		if id == mainID {
			return true
		}
	}

	return false
}

// ProductRef — ссылка на товар, с которой корзина создаёт позицию.
func (p Product) ProductRef() ProductRef {
	return ProductRef{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Currency: p.Currency,
		Image:    p.Image,
		Weight:   p.Weight,
	}
}

// ProductRef содержит поля товара, которые копируются в позицию корзины.
type ProductRef struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Currency string
	Image    string
	Weight   float64
}

// DisplayOverride — поля витрины, пришедшие из CMS. Пустые поля не переопределяют каталог.
type DisplayOverride struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ProductView — товар в том виде, в котором его показывает витрина.
type ProductView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Weight      float64         `json:"weight"`
	Category    Category        `json:"category"`
}

// MergeDisplay объединяет товар каталога с данными CMS.
// Название, описание и изображение могут прийти из CMS; ID, цена, валюта, вес и категория всегда берутся из каталога.
func MergeDisplay(p Product, o *DisplayOverride) ProductView {
	view := ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price,
		Currency:    p.Currency,
		Weight:      p.Weight,
		Category:    p.Category,
	}

	if o == nil {
		return view
	}
	if o.Name != "" {
		view.Name = o.Name
	}
	if o.Description != "" {
		view.Description = o.Description
	}
	if o.Image != "" {
		view.Image = o.Image
	}

	return view
}
