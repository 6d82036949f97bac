package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type memCartRepo struct {
	mu      sync.Mutex
	carts   map[string]domain.Cart
	loadErr error
	saveErr error
	saves   int
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[string]domain.Cart)}
}

func (r *memCartRepo) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadErr != nil {
		return nil, r.loadErr
	}
	cart, ok := r.carts[sessionID]
	if !ok {
		return nil, nil
	}

	return &cart, nil
}

func (r *memCartRepo) Save(_ context.Context, sessionID string, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.carts[sessionID] = cart

	return nil
}

func (r *memCartRepo) stored(sessionID string) (domain.Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[sessionID]
	return cart, ok
}

// fakeShipping отдаёт фиксированный набор тарифов. Если block задан, первый вызов ждёт отмены ctx.
type fakeShipping struct {
	mu      sync.Mutex
	methods []domain.ShippingMethod
	calls   int
	block   bool
	entered chan struct{}
}

func (f *fakeShipping) GetShippingRates(ctx context.Context, _ *ShippingRatesReq) ([]domain.ShippingMethod, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()

	if f.block && first {
		close(f.entered)
		<-ctx.Done()
	}

	return append([]domain.ShippingMethod(nil), f.methods...), nil
}

type fakePayment struct {
	mu         sync.Mutex
	gate       chan struct{} // если задан, CreatePaymentIntent ждёт его закрытия
	updateGate chan struct{} // если задан, UpdatePaymentIntent ждёт его закрытия
	createErr  error
	confirmErr error
	intents    []*PaymentIntentReq
	updates    []int64
	confirms   []*ConfirmPaymentReq
	sessions   []*PaymentCheckoutSessionReq
}

func (f *fakePayment) CreateCheckoutSession(_ context.Context, req *PaymentCheckoutSessionReq) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessions = append(f.sessions, req)
	return "https://pay.example.test/session/cs_1", nil
}

func (f *fakePayment) CreatePaymentIntent(ctx context.Context, req *PaymentIntentReq) (*PaymentIntent, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.intents = append(f.intents, req)
	if f.createErr != nil {
		return nil, f.createErr
	}

	return &PaymentIntent{
		ID:           "pi_1",
		ClientSecret: "pi_1_secret",
		AmountMinor:  req.AmountMinor,
		Currency:     req.Currency,
	}, nil
}

func (f *fakePayment) UpdatePaymentIntent(ctx context.Context, _ string, amountMinor int64) error {
	f.mu.Lock()
	gate := f.updateGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates = append(f.updates, amountMinor)
	return nil
}

func (f *fakePayment) ConfirmPayment(_ context.Context, req *ConfirmPaymentReq) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.confirms = append(f.confirms, req)
	return f.confirmErr
}

// holdUpdates блокирует UpdatePaymentIntent до вызова возвращённой функции.
func (f *fakePayment) holdUpdates() (release func()) {
	gate := make(chan struct{})

	f.mu.Lock()
	f.updateGate = gate
	f.mu.Unlock()

	return func() { close(gate) }
}

// chargedAmount возвращает сумму намерения на момент подтверждения:
// последнюю заданную через UpdatePaymentIntent или сумму создания.
func (f *fakePayment) chargedAmount() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n := len(f.updates); n > 0 {
		return f.updates[n-1]
	}
	if n := len(f.intents); n > 0 {
		return f.intents[n-1].AmountMinor
	}
	return 0
}

func (f *fakePayment) confirmCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.confirms)
}

func (f *fakePayment) setConfirmErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.confirmErr = err
}

func (f *fakePayment) lastIntent() *PaymentIntentReq {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.intents) == 0 {
		return nil
	}
	return f.intents[len(f.intents)-1]
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []*domain.Order
	err    error
}

func (f *fakeOrders) RecordOrder(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, order)

	return nil
}

func (f *fakeOrders) recorded() []*domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*domain.Order(nil), f.orders...)
}

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeOrderRepo struct {
	orders []*domain.Order
	err    error
}

func (f *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, order)

	return nil
}

type fakeOutboxRepo struct {
	events []*OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)

	return event, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error {
	return nil
}

func (f *fakeOutboxRepo) ReleaseStuck(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

type fakeReceipts struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeReceipts) Upload(_ context.Context, key string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)

	return nil
}
