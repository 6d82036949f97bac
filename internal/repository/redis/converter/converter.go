package converter

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// CartConverter переводит корзину между доменом и форматом хранения в Redis.
type CartConverter struct{}

func (CartConverter) ToRedisModel(cart domain.Cart) CartRedisModel {
	items := make([]CartItemRedisModel, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemRedisModel{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price.String(),
			Currency: item.Currency,
			Image:    item.Image,
			Weight:   item.Weight,
			Quantity: item.Quantity,
		})
	}

	var method *ShippingMethodRedisModel
	if cart.SelectedShippingMethod != nil {
		m := ShippingMethodToRedisModel(*cart.SelectedShippingMethod)
		method = &m
	}

	return CartRedisModel{Items: items, SelectedShippingMethod: method}
}

// ToDomain восстанавливает корзину. Позиции с некорректной ценой или количеством < 1 отбрасываются.
func (CartConverter) ToDomain(model CartRedisModel) domain.Cart {
	cart := domain.NewCart()
	seen := make(map[string]struct{}, len(model.Items))
	for _, item := range model.Items {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			continue
		}
		seen[item.ID] = struct{}{}

		cart.Items = append(cart.Items, domain.CartItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    price,
			Currency: item.Currency,
			Image:    item.Image,
			Weight:   item.Weight,
			Quantity: item.Quantity,
		})
	}

	if model.SelectedShippingMethod != nil {
		m := ShippingMethodToDomain(*model.SelectedShippingMethod)
		cart.SelectedShippingMethod = &m
	}

	return cart
}

func ShippingMethodToRedisModel(m domain.ShippingMethod) ShippingMethodRedisModel {
	return ShippingMethodRedisModel{
		ID:                m.ID,
		Name:              m.Name,
		Price:             m.Price,
		Currency:          m.Currency,
		MinDeliveryTime:   m.MinDeliveryTime,
		MaxDeliveryTime:   m.MaxDeliveryTime,
		Carrier:           m.Carrier,
		ServicePointInput: m.ServicePointInput,
	}
}

func ShippingMethodToDomain(m ShippingMethodRedisModel) domain.ShippingMethod {
	return domain.ShippingMethod{
		ID:                m.ID,
		Name:              m.Name,
		Price:             m.Price,
		Currency:          m.Currency,
		MinDeliveryTime:   m.MinDeliveryTime,
		MaxDeliveryTime:   m.MaxDeliveryTime,
		Carrier:           m.Carrier,
		ServicePointInput: m.ServicePointInput,
	}
}

func ShippingMethodsToRedisModels(methods []domain.ShippingMethod) []ShippingMethodRedisModel {
	res := make([]ShippingMethodRedisModel, 0, len(methods))
	for _, m := range methods {
		res = append(res, ShippingMethodToRedisModel(m))
	}

	return res
}

func ShippingMethodsToDomain(models []ShippingMethodRedisModel) []domain.ShippingMethod {
	res := make([]domain.ShippingMethod, 0, len(models))
	for _, m := range models {
		res = append(res, ShippingMethodToDomain(m))
	}

	return res
}
