package converter

import "time"

// OrderModel представляет запись таблицы orders в PostgreSQL.
// Позиции, способ доставки и адреса хранятся в JSONB.
type OrderModel struct {
	ID              string    `db:"id"`
	CheckoutID      string    `db:"checkout_id"`
	Items           []byte    `db:"items"`
	ShippingMethod  []byte    `db:"shipping_method"`
	Subtotal        string    `db:"subtotal"`
	ShippingCost    string    `db:"shipping_cost"`
	Total           string    `db:"total"`
	Currency        string    `db:"currency"`
	PaymentIntentID string    `db:"payment_intent_id"`
	ShippingAddress []byte    `db:"shipping_address"`
	BillingAddress  []byte    `db:"billing_address"`
	CreatedAt       time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
