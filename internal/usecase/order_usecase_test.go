package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *domain.Order {
	cart := domain.NewCart().
		AddItem(domain.ProductRef{ID: "prod_lumen_one", Name: "Lumen One", Price: decimal.RequireFromString("249.00"), Currency: "EUR", Weight: 1.8}).
		SetShippingMethod(&domain.ShippingMethod{ID: 1, Name: "Standard", Price: "6.95", Currency: "EUR"})

	return domain.NewOrder("order-1", "checkout-1", cart, "EUR", "pi_1", testAddress, testAddress)
}

func TestOrderUseCase_RecordOrderWritesOrderAndEvent(t *testing.T) {
	tx := &fakeTxManager{}
	orders := &fakeOrderRepo{}
	outbox := &fakeOutboxRepo{}
	receipts := &fakeReceipts{}
	uc := NewOrderUC(tx, orders, outbox, receipts, logger.NewNopLogger())

	require.NoError(t, uc.RecordOrder(context.Background(), testOrder()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, uc.Wait(ctx))

	assert.Equal(t, 1, tx.calls)
	require.Len(t, orders.orders, 1)
	require.Len(t, outbox.events, 1)

	event := outbox.events[0]
	assert.Equal(t, OrderCompleted, event.EventType)
	assert.Equal(t, "order-1", event.AggregateID)
	assert.Equal(t, Pending, event.Status)
	assert.NotEmpty(t, event.EventID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "order-1", payload["id"])
	assert.Equal(t, "255.95", payload["total"])

	assert.Equal(t, []string{"receipts/order-1.json"}, receipts.keys)
}

func TestOrderUseCase_RepositoryFailureSkipsReceipt(t *testing.T) {
	orders := &fakeOrderRepo{err: errors.New("unique violation")}
	outbox := &fakeOutboxRepo{}
	receipts := &fakeReceipts{}
	uc := NewOrderUC(&fakeTxManager{}, orders, outbox, receipts, logger.NewNopLogger())

	err := uc.RecordOrder(context.Background(), testOrder())
	require.Error(t, err)

	require.NoError(t, uc.Wait(context.Background()))
	assert.Empty(t, outbox.events)
	assert.Empty(t, receipts.keys)
}

func TestOrderUseCase_ReceiptFailureIsNotFatal(t *testing.T) {
	receipts := &fakeReceipts{err: errors.New("bucket missing")}
	uc := NewOrderUC(&fakeTxManager{}, &fakeOrderRepo{}, &fakeOutboxRepo{}, receipts, logger.NewNopLogger())

	require.NoError(t, uc.RecordOrder(context.Background(), testOrder()))
	require.NoError(t, uc.Wait(context.Background()))
}

func TestOrderUseCase_RecordAfterWaitSkipsReceipt(t *testing.T) {
	orders := &fakeOrderRepo{}
	outbox := &fakeOutboxRepo{}
	receipts := &fakeReceipts{}
	uc := NewOrderUC(&fakeTxManager{}, orders, outbox, receipts, logger.NewNopLogger())

	require.NoError(t, uc.Wait(context.Background()))

	require.NoError(t, uc.RecordOrder(context.Background(), testOrder()))
	require.NoError(t, uc.Wait(context.Background()))

	assert.Len(t, orders.orders, 1)
	assert.Len(t, outbox.events, 1)
	assert.Empty(t, receipts.keys)
}
