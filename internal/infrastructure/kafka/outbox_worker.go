package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	outboxChannel   = "outbox_pending"
	batchSize       = 10
	stuckAfter      = 5 * time.Minute
	defaultPollTick = 30 * time.Second
	reconnectBase   = time.Second
	reconnectMax    = 30 * time.Second
)

// OutboxWorker публикует события outbox в Kafka. Новые события приходят через
// LISTEN outbox_pending, периодический опрос подбирает пропущенные уведомления
// и возвращает в очередь события, зависшие в статусе processing.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	dbConnStr string
	pollTick  time.Duration
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		cancel:    func() {},
		dbConnStr: dbConnStr,
		pollTick:  defaultPollTick,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	// Запускаем слушатель уведомлений
	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

// Stop останавливает воркер и ждёт завершения горутин.
func (w *OutboxWorker) Stop(ctx context.Context) error {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *OutboxWorker) run(ctx context.Context) {
	// Обрабатываем "остатки" при старте
	w.logger.Infof("Draining pending outbox events on startup...")
	w.releaseStuck(ctx)
	w.drain(ctx)

	ticker := time.NewTicker(w.pollTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped")
			return
		case <-ticker.C:
			w.releaseStuck(ctx)
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) releaseStuck(ctx context.Context) {
	n, err := w.repo.ReleaseStuck(ctx, stuckAfter)
	if err != nil {
		w.logger.Warnf("release stuck outbox events failed: %v", err)
		return
	}
	if n > 0 {
		w.logger.Infof("Released %d stuck outbox events", n)
	}
}

// drain обрабатывает пачки, пока очередь не опустеет.
func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn *pgx.Conn
	var err error

	connect := func() error {
		conn, err = pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		_, err = conn.Exec(ctx, "LISTEN "+outboxChannel)
		if err != nil {
			conn.Close(ctx)
			conn = nil
			return e.Wrap("failed to LISTEN", err)
		}

		w.logger.Infof("Subscribed to '%s' channel", outboxChannel)
		return nil
	}

	if err := connect(); err != nil {
		w.logger.Warnf("Initial connect failed, relying on polling: %v", err)
		return
	}
	defer func() {
		if conn != nil {
			conn.Close(context.WithoutCancel(ctx))
		}
	}()

	reconnects := 0
	for ctx.Err() == nil {
		if conn == nil {
			pause := jitter.ExponentialBackoff(reconnectBase, reconnectMax, reconnects, jitter.DefaultJitter)
			if err := jitter.Sleep(ctx, pause); err != nil {
				return
			}
			if err := connect(); err != nil {
				reconnects++
				w.logger.Warnf("Reconnect failed (attempt %d): %v", reconnects, err)
				continue
			}
			reconnects = 0
			continue
		}

		ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
		notif, err := conn.WaitForNotification(ctxWithTimeout)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			conn.Close(context.WithoutCancel(ctx))
			conn = nil
			continue
		}

		if notif != nil && notif.Channel == outboxChannel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, batchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	sent := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			// событие остаётся в processing и вернётся в очередь через releaseStuck
			w.logger.Warnf("outbox event %s not published: %v", event.EventID, err)
			continue
		}
		sent++
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	// вся пачка упала: брокер недоступен, следующая попытка по тику
	if sent == 0 {
		return false, nil
	}

	return len(events) == batchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		return e.Wrap("Malformed outbox payload", err)
	}

	if err := w.SendBytes(ctx, event, payload); err != nil {
		if isRetryableError(err) {
			return e.Wrap("Temporary Kafka failure, will retry", err)
		}
		return e.Wrap("Permanent Kafka failure", err)
	}
	return nil
}

func (w *OutboxWorker) SendBytes(ctx context.Context, event *usecase.OutboxEvent, payload []byte) error {
	return w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.AggregateID, payload, map[string]string{
		"event_id":   event.EventID,
		"event_type": string(event.EventType),
	}))
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
