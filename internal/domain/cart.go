package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CartItem — позиция корзины. Каждый ID встречается в корзине не более одного раза, Quantity >= 1.
type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Image    string          `json:"image"`
	Weight   float64         `json:"weight"`
	Quantity int             `json:"quantity"`
}

// Subtotal возвращает price * quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart — неизменяемый снимок корзины.
// Каждый метод изменения возвращает новый снимок и не трогает исходный.
type Cart struct {
	Items                  []CartItem      `json:"items"`
	SelectedShippingMethod *ShippingMethod `json:"selectedShippingMethod"`
}

// NewCart возвращает пустую корзину.
func NewCart() Cart {
	return Cart{Items: []CartItem{}}
}

// AddItem увеличивает количество существующей позиции на 1 или добавляет новую с количеством 1.
func (c Cart) AddItem(ref ProductRef) Cart {
	next := c.clone()
	for i := range next.Items {
		if next.Items[i].ID == ref.ID {
			next.Items[i].Quantity++
			return next
		}
	}

	next.Items = append(next.Items, CartItem{
		ID:       ref.ID,
		Name:     ref.Name,
		Price:    ref.Price,
		Currency: ref.Currency,
		Image:    ref.Image,
		Weight:   ref.Weight,
		Quantity: 1,
	})

	return next
}

// RemoveItem удаляет позицию. Если позиции нет, возвращается копия без изменений.
func (c Cart) RemoveItem(id string) Cart {
	next := c.clone()
	items := next.Items[:0]
	for _, item := range next.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	next.Items = items

	return next
}

// UpdateQuantity устанавливает количество. qty <= 0 равносильно RemoveItem.
// Верхняя граница не проверяется: ограничение 1..10 есть только в интерфейсе витрины.
func (c Cart) UpdateQuantity(id string, qty int) Cart {
	if qty <= 0 {
		return c.RemoveItem(id)
	}

	next := c.clone()
	for i := range next.Items {
		if next.Items[i].ID == id {
			next.Items[i].Quantity = qty
			break
		}
	}

	return next
}

// Clear очищает позиции и выбранный способ доставки одной операцией.
func (c Cart) Clear() Cart {
	return NewCart()
}

// SetShippingMethod безусловно заменяет выбранный способ доставки.
func (c Cart) SetShippingMethod(m *ShippingMethod) Cart {
	next := c.clone()
	if m == nil {
		next.SelectedShippingMethod = nil
		return next
	}

	method := *m
	next.SelectedShippingMethod = &method

	return next
}

// Total — сумма price * quantity по всем позициям.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}

	return total
}

// ItemCount — сумма количеств.
func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}

	return count
}

// ShippingCost возвращает цену выбранного способа доставки или 0.
func (c Cart) ShippingCost() decimal.Decimal {
	if c.SelectedShippingMethod == nil {
		return decimal.Zero
	}

	return c.SelectedShippingMethod.PriceDecimal()
}

// TotalWithShipping — Total() плюс цена выбранной доставки.
func (c Cart) TotalWithShipping() decimal.Decimal {
	return c.Total().Add(c.ShippingCost())
}

// TotalWeight — суммарный вес в килограммах.
func (c Cart) TotalWeight() float64 {
	weight := 0.0
	for _, item := range c.Items {
		weight += item.Weight * float64(item.Quantity)
	}

	return weight
}

// AcceptsCurrency сообщает, можно ли положить в корзину товар в валюте currency.
// Корзина одновалютная: все позиции в валюте первой.
func (c Cart) AcceptsCurrency(currency string) bool {
	return len(c.Items) == 0 || strings.EqualFold(c.Items[0].Currency, currency)
}

// Currency возвращает валюту корзины или fallback для пустой корзины.
// AddItem в CartUseCase не допускает позиций в другой валюте, поэтому берётся валюта первой позиции.
func (c Cart) Currency(fallback string) string {
	if len(c.Items) == 0 {
		return fallback
	}

	return c.Items[0].Currency
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)

	next := Cart{Items: items}
	if c.SelectedShippingMethod != nil {
		method := *c.SelectedShippingMethod
		next.SelectedShippingMethod = &method
	}

	return next
}
