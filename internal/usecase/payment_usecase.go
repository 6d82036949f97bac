package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// PaymentUseCase создаёт платёжные сессии и намерения оплаты.
// Цены позиций берутся только из каталога: клиент присылает ID и количество.
type PaymentUseCase struct {
	catalog         CatalogRepository
	payment         PaymentInfra
	defaultCurrency string
	logger          logger.Logger
}

func NewPaymentUC(catalog CatalogRepository, payment PaymentInfra, defaultCurrency string, logger logger.Logger) *PaymentUseCase {
	return &PaymentUseCase{
		catalog:         catalog,
		payment:         payment,
		defaultCurrency: strings.ToUpper(defaultCurrency),
		logger:          logger,
	}
}

// CreateCheckoutSession создаёт сессию оплаты на стороне провайдера и возвращает URL для редиректа.
func (p *PaymentUseCase) CreateCheckoutSession(ctx context.Context, req *CreateCheckoutSessionReq) (*CreateCheckoutSessionRes, error) {
	const op = "PaymentUseCase.CreateCheckoutSession"

	if strings.TrimSpace(req.SuccessURL) == "" || strings.TrimSpace(req.CancelURL) == "" {
		return nil, e.Wrap(op, e.ErrMissingRedirectURLs)
	}

	items, err := p.resolveItems(req.Items)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	url, err := p.payment.CreateCheckoutSession(ctx, &PaymentCheckoutSessionReq{
		Items:      items,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		p.logger.Errorf(err, "checkout session creation failed")
		return nil, e.Wrap(op, err)
	}

	return &CreateCheckoutSessionRes{URL: url}, nil
}

// CreatePaymentIntent создаёт намерение оплаты на сумму позиций плюс доставка.
func (p *PaymentUseCase) CreatePaymentIntent(ctx context.Context, req *CreatePaymentIntentReq) (*CreatePaymentIntentRes, error) {
	const op = "PaymentUseCase.CreatePaymentIntent"

	if req.ShippingCost.IsNegative() {
		return nil, e.Wrap(op, e.ErrInvalidPrice)
	}

	items, err := p.resolveItems(req.Items)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = p.defaultCurrency
	}
	for _, item := range items {
		if !strings.EqualFold(item.Currency, currency) {
			return nil, e.Wrap(op, e.ErrCurrencyMismatch)
		}
	}

	shippingMinor := domain.MinorUnits(req.ShippingCost)
	intent, err := p.payment.CreatePaymentIntent(ctx, &PaymentIntentReq{
		AmountMinor:       itemsAmountMinor(items) + shippingMinor,
		ShippingCostMinor: shippingMinor,
		Currency:          currency,
		Items:             items,
	})
	if err != nil {
		p.logger.Errorf(err, "payment intent creation failed")
		return nil, e.Wrap(op, err)
	}

	return &CreatePaymentIntentRes{ClientSecret: intent.ClientSecret}, nil
}

// resolveItems сопоставляет позиции запроса с каталогом.
func (p *PaymentUseCase) resolveItems(reqItems []LineItemReq) ([]PaymentLineItem, error) {
	if len(reqItems) == 0 {
		return nil, e.ErrEmptyCart
	}

	items := make([]PaymentLineItem, 0, len(reqItems))
	for _, ri := range reqItems {
		if ri.Quantity < 1 {
			return nil, e.ErrInvalidQuantity
		}

		product, ok := p.catalog.GetProduct(ri.ID)
		if !ok {
			return nil, e.ErrProductNotFound
		}

		items = append(items, PaymentLineItem{
			ProductID:       product.ID,
			Name:            product.Name,
			UnitAmountMinor: domain.MinorUnits(product.Price),
			Quantity:        ri.Quantity,
			Currency:        strings.ToUpper(product.Currency),
		})
	}

	return items, nil
}

// itemsAmountMinor — сумма позиций в минорных единицах.
func itemsAmountMinor(items []PaymentLineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitAmountMinor * int64(item.Quantity)
	}

	return total
}

// cartAmountMinor — сумма корзины вместе с выбранной доставкой.
func cartAmountMinor(cart domain.Cart) int64 {
	return domain.MinorUnits(cart.Total()) + domain.MinorUnits(cart.ShippingCost())
}
