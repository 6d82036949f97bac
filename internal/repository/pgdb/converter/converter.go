package converter

import (
	"encoding/json"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// OrderConverter преобразует Order между domain и моделью PostgreSQL.
type OrderConverter struct{}

func (OrderConverter) ToModel(order *domain.Order) (*OrderModel, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	method, err := json.Marshal(order.ShippingMethod)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	shipping, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	billing, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &OrderModel{
		ID:              order.ID,
		CheckoutID:      order.CheckoutID,
		Items:           items,
		ShippingMethod:  method,
		Subtotal:        order.Subtotal.StringFixed(2),
		ShippingCost:    order.ShippingCost.StringFixed(2),
		Total:           order.Total.StringFixed(2),
		Currency:        order.Currency,
		PaymentIntentID: order.PaymentIntentID,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		CreatedAt:       order.CreatedAt,
	}, nil
}

func (OrderConverter) ToEntity(model *OrderModel) (*domain.Order, error) {
	order := &domain.Order{
		ID:              model.ID,
		CheckoutID:      model.CheckoutID,
		Currency:        model.Currency,
		PaymentIntentID: model.PaymentIntentID,
		CreatedAt:       model.CreatedAt,
	}

	var err error
	if order.Subtotal, err = decimal.NewFromString(model.Subtotal); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if order.ShippingCost, err = decimal.NewFromString(model.ShippingCost); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if order.Total, err = decimal.NewFromString(model.Total); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := json.Unmarshal(model.Items, &order.Items); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if len(model.ShippingMethod) > 0 {
		if err := json.Unmarshal(model.ShippingMethod, &order.ShippingMethod); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}
	if err := json.Unmarshal(model.ShippingAddress, &order.ShippingAddress); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := json.Unmarshal(model.BillingAddress, &order.BillingAddress); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return order, nil
}

// OutboxEventConverter преобразует OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	res := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		res = append(res, c.ToEntity(m))
	}

	return res
}
