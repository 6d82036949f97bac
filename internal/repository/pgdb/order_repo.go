package pgdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepo реализует репозиторий заказов поверх PostgreSQL.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{
		pool: pool,
		conv: conv,
	}
}

// Create вставляет заказ. Вызывается только внутри транзакции TxManager.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := o.conv.ToModel(order)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO orders (
			id,
			checkout_id,
			items,
			shipping_method,
			subtotal,
			shipping_cost,
			total,
			currency,
			payment_intent_id,
			shipping_address,
			billing_address,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	if _, err := tx.Exec(ctx, query,
		model.ID,
		model.CheckoutID,
		model.Items,
		model.ShippingMethod,
		model.Subtotal,
		model.ShippingCost,
		model.Total,
		model.Currency,
		model.PaymentIntentID,
		model.ShippingAddress,
		model.BillingAddress,
		model.CreatedAt,
	); err != nil {
		if postgresDuplicate(err) {
			return fmt.Errorf("%s: order for payment intent %s already exists", whereami.WhereAmI(), order.PaymentIntentID)
		}

		return fmt.Errorf("%s: failed to insert order: %w", whereami.WhereAmI(), err)
	}

	return nil
}

// GetByID читает заказ вне транзакции.
func (o *OrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, checkout_id, items, shipping_method, subtotal::text, shipping_cost::text, total::text,
		       currency, payment_intent_id, shipping_address, billing_address, created_at
		FROM orders
		WHERE id = $1
	`

	var model converter.OrderModel
	err := o.pool.QueryRow(ctx, query, id).Scan(
		&model.ID,
		&model.CheckoutID,
		&model.Items,
		&model.ShippingMethod,
		&model.Subtotal,
		&model.ShippingCost,
		&model.Total,
		&model.Currency,
		&model.PaymentIntentID,
		&model.ShippingAddress,
		&model.BillingAddress,
		&model.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), ErrOrderNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(&model)
}
