package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/google/uuid"
)

const receiptUploadTimeout = 10 * time.Second

// OrderUseCase фиксирует оплаченные заказы: заказ и событие outbox пишутся в одной транзакции,
// чек архивируется в объектное хранилище в фоне.
type OrderUseCase struct {
	txManager TxManager
	orderRepo OrderRepository
	outbox    OutboxRepository
	receipts  ReceiptRepository
	logger    logger.Logger

	mu      sync.Mutex
	stopped bool // после начала Wait новые загрузки не запускаются
	wg      sync.WaitGroup
}

func NewOrderUC(
	txManager TxManager,
	orderRepo OrderRepository,
	outbox OutboxRepository,
	receipts ReceiptRepository,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		txManager: txManager,
		orderRepo: orderRepo,
		outbox:    outbox,
		receipts:  receipts,
		logger:    logger,
	}
}

// RecordOrder сохраняет заказ и событие order.completed атомарно.
func (o *OrderUseCase) RecordOrder(ctx context.Context, order *domain.Order) error {
	const op = "OrderUseCase.RecordOrder"

	payload, err := json.Marshal(order)
	if err != nil {
		return e.Wrap(op, err)
	}

	err = o.txManager.Do(ctx, func(ctx context.Context) error {
		if err := o.orderRepo.Create(ctx, order); err != nil {
			return err
		}

		_, err := o.outbox.Create(ctx, &OutboxEvent{
			EventID:     uuid.NewString(),
			EventType:   OrderCompleted,
			AggregateID: order.ID,
			Payload:     payload,
			Status:      Pending,
			CreatedAt:   time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	o.archiveReceipt(ctx, order.ID, payload)

	return nil
}

// Wait запрещает новые загрузки чеков и дожидается завершения начатых или отмены ctx.
func (o *OrderUseCase) Wait(ctx context.Context) error {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// archiveReceipt загружает чек в хранилище. Ошибка загрузки не влияет на заказ.
func (o *OrderUseCase) archiveReceipt(ctx context.Context, orderID string, data []byte) {
	if o.receipts == nil {
		return
	}

	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		o.logger.Warnf("Receipt archiving is stopped, skipping. order_id: %s", orderID)
		return
	}
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()

		uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptUploadTimeout)
		defer cancel()

		if err := o.receipts.Upload(uploadCtx, receiptKey(orderID), data); err != nil {
			o.logger.Warnf("Failed to archive receipt. order_id: %s, error: %v", orderID, e.Wrap("OrderUseCase.archiveReceipt", err))
			return
		}
		o.logger.Debugf("Receipt archived. order_id: %s", orderID)
	}()
}

func receiptKey(orderID string) string {
	return fmt.Sprintf("receipts/%s.json", orderID)
}
