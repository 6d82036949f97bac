package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/google/uuid"
)

// checkoutSession — состояние оформления плюс контексты, к которым привязаны исходящие запросы.
// Все поля защищены CheckoutUseCase.mu.
type checkoutSession struct {
	domain.CheckoutSession

	// sessionCtx живёт до завершения или вытеснения оформления.
	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	// stepCtx отменяется при каждой смене шага вместе с увеличением Epoch.
	stepCtx    context.Context
	stepCancel context.CancelFunc

	bootstrapped chan struct{} // закрывается, когда инициализация платежа завершилась
	refreshing   bool          // сумма намерения отстаёт от корзины, идёт обновление
	confirming   bool
	unsubscribe  func()
	lastAccess   time.Time
}

// CheckoutUseCase — машина шагов оформления: адрес, способ доставки, оплата.
type CheckoutUseCase struct {
	cart       CartUC
	shipping   ShippingUC
	payment    PaymentInfra
	orders     OrderUC
	cfg        *cfg.CheckoutCfg
	paymentCfg *cfg.PaymentCfg
	logger     logger.Logger
	now        func() time.Time

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*checkoutSession
}

func NewCheckoutUC(
	cart CartUC,
	shipping ShippingUC,
	payment PaymentInfra,
	orders OrderUC,
	cfg *cfg.CheckoutCfg,
	paymentCfg *cfg.PaymentCfg,
	logger logger.Logger,
) *CheckoutUseCase {
	baseCtx, baseCancel := context.WithCancel(context.Background())

	return &CheckoutUseCase{
		cart:       cart,
		shipping:   shipping,
		payment:    payment,
		orders:     orders,
		cfg:        cfg,
		paymentCfg: paymentCfg,
		logger:     logger,
		now:        time.Now,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		sessions:   make(map[string]*checkoutSession),
	}
}

// Start открывает оформление на шаге shipping и запускает однократную инициализацию платежа.
func (c *CheckoutUseCase) Start(ctx context.Context, cartSessionID string) (*domain.CheckoutSession, error) {
	const op = "CheckoutUseCase.Start"

	cart := c.cart.Get(ctx, cartSessionID)
	if cart.IsEmpty() {
		return nil, e.Wrap(op, e.ErrEmptyCart)
	}

	now := c.now().UTC()
	s := &checkoutSession{
		CheckoutSession: domain.CheckoutSession{
			ID:              uuid.NewString(),
			CartSessionID:   cartSessionID,
			Step:            domain.StepShipping,
			ShippingMethods: []domain.ShippingMethod{},
			Payment: domain.PaymentState{
				Status:      domain.PaymentPending,
				AmountMinor: cartAmountMinor(cart),
				Currency:    cart.Currency(c.cfg.DefaultCurrency),
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		bootstrapped: make(chan struct{}),
		lastAccess:   now,
	}
	s.sessionCtx, s.sessionCancel = context.WithCancel(c.baseCtx)
	s.stepCtx, s.stepCancel = context.WithCancel(s.sessionCtx)

	updates, unsubscribe := c.cart.Subscribe(ctx, cartSessionID)
	s.unsubscribe = unsubscribe

	c.mu.Lock()
	c.sessions[s.ID] = s
	c.wg.Add(2)
	go c.bootstrapPayment(s, cart, s.bootstrapped)
	go c.watchCart(s.sessionCtx, s.ID, updates)
	snap := s.Snapshot()
	c.mu.Unlock()

	c.logger.Debugf("Checkout started. checkout_id: %s", snap.ID)

	return &snap, nil
}

func (c *CheckoutUseCase) Get(_ context.Context, cartSessionID, checkoutID string) (*domain.CheckoutSession, error) {
	const op = "CheckoutUseCase.Get"

	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookup(cartSessionID, checkoutID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	snap := s.Snapshot()
	return &snap, nil
}

// SubmitAddress проверяет адрес, запрашивает тарифы на вес корзины, выбирает первый тариф
// и переводит оформление на шаг shipping-method.
func (c *CheckoutUseCase) SubmitAddress(ctx context.Context, cartSessionID, checkoutID string, addr domain.Address) (*domain.CheckoutSession, error) {
	const op = "CheckoutUseCase.SubmitAddress"

	addr = addr.Normalize()

	c.mu.Lock()
	s, err := c.lookupActive(cartSessionID, checkoutID)
	if err != nil {
		c.mu.Unlock()
		return nil, e.Wrap(op, err)
	}
	if s.Step != domain.StepShipping {
		c.mu.Unlock()
		return nil, e.Wrap(op, e.ErrIllegalTransition)
	}
	if !addr.IsComplete() {
		c.mu.Unlock()
		return nil, e.Wrap(op, e.ErrIncompleteAddress)
	}
	epoch, stepCtx := s.Epoch, s.stepCtx
	c.mu.Unlock()

	cart := c.cart.Get(ctx, cartSessionID)
	if cart.IsEmpty() {
		return nil, e.Wrap(op, e.ErrEmptyCart)
	}

	reqCtx, cancel := c.bindToStep(ctx, stepCtx)
	defer cancel()

	methods, err := c.shipping.GetShippingRates(reqCtx, NewShippingRatesReq(addr, cart.TotalWeight()))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(methods) == 0 {
		return nil, e.Wrap(op, e.ErrCarrierUnavailable)
	}

	c.mu.Lock()
	s, err = c.lookupActive(cartSessionID, checkoutID)
	if err != nil {
		c.mu.Unlock()
		return nil, e.Wrap(op, err)
	}
	if s.Epoch != epoch {
		c.mu.Unlock()
		c.logger.Debugf("Discarding shipping rates for stale step. checkout_id: %s", checkoutID)
		return nil, e.Wrap(op, e.ErrStaleResult)
	}
	s.ShippingAddress = &addr
	s.ShippingMethods = methods
	c.advance(s, domain.StepShippingMethod)
	first := methods[0]
	c.mu.Unlock()

	c.cart.SetShippingMethod(ctx, cartSessionID, &first)

	return c.Get(ctx, cartSessionID, checkoutID)
}

// SelectShippingMethod заменяет выбранный способ доставки в корзине. Допустимы только предложенные способы.
func (c *CheckoutUseCase) SelectShippingMethod(ctx context.Context, cartSessionID, checkoutID string, methodID int64) (*domain.CheckoutSession, error) {
	const op = "CheckoutUseCase.SelectShippingMethod"

	c.mu.Lock()
	s, err := c.lookupActive(cartSessionID, checkoutID)
	if err != nil {
		c.mu.Unlock()
		return nil, e.Wrap(op, err)
	}
	if s.Step != domain.StepShippingMethod {
		c.mu.Unlock()
		return nil, e.Wrap(op, e.ErrIllegalTransition)
	}
	method, ok := s.OffersMethod(methodID)
	if !ok {
		c.mu.Unlock()
		return nil, e.Wrap(op, e.ErrUnknownShippingMethod)
	}
	s.UpdatedAt = c.now().UTC()
	c.mu.Unlock()

	c.cart.SetShippingMethod(ctx, cartSessionID, &method)

	return c.Get(ctx, cartSessionID, checkoutID)
}

// ProceedToPayment переводит оформление на шаг payment, если способ доставки выбран.
// Если сумма намерения отличается от суммы корзины с доставкой, платёж становится pending
// до завершения фонового обновления.
func (c *CheckoutUseCase) ProceedToPayment(ctx context.Context, cartSessionID, checkoutID string) (*domain.CheckoutSession, error) {
	const op = "CheckoutUseCase.ProceedToPayment"

	cart := c.cart.Get(ctx, cartSessionID)

	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookupActive(cartSessionID, checkoutID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !s.Step.CanAdvanceTo(domain.StepPayment) {
		return nil, e.Wrap(op, e.ErrIllegalTransition)
	}
	if cart.SelectedShippingMethod == nil {
		return nil, e.Wrap(op, e.ErrNoShippingMethod)
	}

	c.advance(s, domain.StepPayment)

	if s.Payment.Status == domain.PaymentFailed {
		s.Payment = domain.PaymentState{
			Status:      domain.PaymentPending,
			AmountMinor: cartAmountMinor(cart),
			Currency:    cart.Currency(c.cfg.DefaultCurrency),
		}
		s.bootstrapped = make(chan struct{})
		c.wg.Add(1)
		go c.bootstrapPayment(s, cart, s.bootstrapped)
	}

	switch {
	case s.Payment.Status == domain.PaymentReady && s.Payment.AmountMinor != cartAmountMinor(cart):
		c.refreshIntent(s)
	case s.Payment.Status == domain.PaymentPending:
		// намерение ещё создаётся: сумма сверится после инициализации
		c.wg.Add(1)
		go c.syncIntentAmount(s.stepCtx, s.ID, s.CartSessionID, s.Epoch, s.bootstrapped, false)
	}

	snap := s.Snapshot()
	return &snap, nil
}

// Back возвращает на любой предыдущий шаг. Тарифы не запрашиваются заново, выбор сохраняется.
// Запросы, начатые на текущем шаге, отменяются.
func (c *CheckoutUseCase) Back(_ context.Context, cartSessionID, checkoutID string, step domain.CheckoutStep) (*domain.CheckoutSession, error) {
	const op = "CheckoutUseCase.Back"

	if !step.IsValid() {
		return nil, e.Wrap(op, e.ErrInvalidCheckoutStep)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookupActive(cartSessionID, checkoutID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if s.confirming || !s.Step.CanGoBackTo(step) {
		return nil, e.Wrap(op, e.ErrIllegalTransition)
	}

	c.advance(s, step)

	snap := s.Snapshot()
	return &snap, nil
}

// ConfirmPayment подтверждает платёж. Подтверждается только намерение, сумма которого равна
// сумме корзины с доставкой; заказ строится из того же снимка корзины.
// При успехе заказ фиксируется, корзина очищается, оформление завершается.
// При отказе оформление остаётся на шаге payment.
func (c *CheckoutUseCase) ConfirmPayment(ctx context.Context, cartSessionID, checkoutID string, billing *domain.Address) (*ConfirmPaymentRes, error) {
	const op = "CheckoutUseCase.ConfirmPayment"

	cart := c.cart.Get(ctx, cartSessionID)
	amount := cartAmountMinor(cart)

	c.mu.Lock()
	s, err := c.lookupActive(cartSessionID, checkoutID)
	if err != nil {
		c.mu.Unlock()
		return nil, e.Wrap(op, err)
	}
	if s.Step != domain.StepPayment {
		c.mu.Unlock()
		return nil, e.Wrap(op, e.ErrIllegalTransition)
	}
	if s.Payment.Status != domain.PaymentReady || s.confirming {
		c.mu.Unlock()
		return nil, e.Wrap(op, e.ErrPaymentNotReady)
	}
	if cart.IsEmpty() {
		c.mu.Unlock()
		return nil, e.Wrap(op, e.ErrEmptyCart)
	}
	if s.Payment.AmountMinor != amount {
		c.refreshIntent(s)
		c.mu.Unlock()
		c.logger.Debugf("Payment amount is behind the cart. checkout_id: %s", checkoutID)
		return nil, e.Wrap(op, e.ErrPaymentNotReady)
	}

	shipping := *s.ShippingAddress
	billingAddr := shipping
	if billing != nil {
		billingAddr = billing.Normalize()
		if !billingAddr.IsComplete() {
			c.mu.Unlock()
			return nil, e.Wrap(op, e.ErrIncompleteAddress)
		}
	}

	s.confirming = true
	s.Payment.Error = ""
	intentID, currency, stepCtx := s.Payment.IntentID, s.Payment.Currency, s.stepCtx
	c.mu.Unlock()

	reqCtx, cancel := c.bindToStep(ctx, stepCtx)
	defer cancel()

	err = c.payment.ConfirmPayment(reqCtx, &ConfirmPaymentReq{
		IntentID:  intentID,
		Billing:   billingAddr,
		Shipping:  shipping,
		ReturnURL: c.paymentCfg.ReturnURL,
	})
	if err != nil {
		c.mu.Lock()
		s.confirming = false
		if errors.Is(err, e.ErrPaymentDeclined) || errors.Is(err, e.ErrPaymentActionRequired) {
			s.Payment.Error = err.Error()
		}
		s.UpdatedAt = c.now().UTC()
		c.mu.Unlock()

		c.logger.Warnf("Payment confirmation failed. checkout_id: %s, error: %v", checkoutID, err)
		return nil, e.Wrap(op, err)
	}

	order := domain.NewOrder(uuid.NewString(), checkoutID, cart, currency, intentID, shipping, billingAddr)
	if err := c.orders.RecordOrder(ctx, order); err != nil {
		// платёж уже проведён: оформление завершается, заказ восстанавливается по логу
		c.logger.Errorf(err, "failed to record paid order. checkout_id: %s, order_id: %s, intent_id: %s",
			checkoutID, order.ID, intentID)
	}

	c.cart.Clear(ctx, cartSessionID)

	c.mu.Lock()
	s.confirming = false
	s.OrderID = order.ID
	c.advance(s, domain.StepCompleted)
	c.release(s)
	c.mu.Unlock()

	c.logger.Infof("Checkout completed. checkout_id: %s, order_id: %s", checkoutID, order.ID)

	return &ConfirmPaymentRes{
		CheckoutID:  checkoutID,
		OrderID:     order.ID,
		RedirectURL: successURL(c.paymentCfg.SuccessURL, order.ID),
	}, nil
}

// Run вытесняет оформления, не использовавшиеся дольше SessionTTL. Блокируется до отмены ctx.
func (c *CheckoutUseCase) Run(ctx context.Context) {
	period := c.cfg.SessionTTL / 4
	if period <= 0 {
		period = time.Minute
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.evictExpired(); n > 0 {
				c.logger.Debugf("Evicted %d expired checkout sessions", n)
			}
		}
	}
}

// Shutdown отменяет все исходящие запросы и ждёт завершения фоновых задач.
func (c *CheckoutUseCase) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	for id, s := range c.sessions {
		c.release(s)
		delete(c.sessions, id)
	}
	c.mu.Unlock()
	c.baseCancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CheckoutUseCase) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := c.now().Add(-c.cfg.SessionTTL)
	evicted := 0
	for id, s := range c.sessions {
		if s.confirming || s.lastAccess.After(deadline) {
			continue
		}
		c.release(s)
		delete(c.sessions, id)
		evicted++
	}

	return evicted
}

// bootstrapPayment создаёт намерение оплаты один раз на оформление. Привязан к жизни оформления, а не шага.
func (c *CheckoutUseCase) bootstrapPayment(s *checkoutSession, cart domain.Cart, done chan struct{}) {
	defer c.wg.Done()
	defer close(done)

	c.mu.Lock()
	ctx, checkoutID, epoch := s.sessionCtx, s.ID, s.Epoch
	c.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	currency := cart.Currency(c.cfg.DefaultCurrency)
	intent, err := c.payment.CreatePaymentIntent(reqCtx, &PaymentIntentReq{
		AmountMinor:       cartAmountMinor(cart),
		ShippingCostMinor: domain.MinorUnits(cart.ShippingCost()),
		Currency:          currency,
		Items:             NewPaymentLineItems(cart.Items),
		IdempotencyKey:    fmt.Sprintf("%s:%d", checkoutID, epoch),
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.Payment.Status = domain.PaymentFailed
		s.Payment.Error = err.Error()
		c.logger.Warnf("Payment intent bootstrap failed. checkout_id: %s, error: %v", checkoutID, err)
		return
	}

	s.Payment.Status = domain.PaymentReady
	s.Payment.IntentID = intent.ID
	s.Payment.ClientSecret = intent.ClientSecret
	s.Payment.AmountMinor = intent.AmountMinor
	s.Payment.Currency = currency
	s.Payment.Error = ""
}

// refreshIntent помечает платёж как отстающий от корзины и запускает обновление суммы.
// Вызывается под c.mu при готовом платеже.
func (c *CheckoutUseCase) refreshIntent(s *checkoutSession) {
	s.refreshing = true
	s.Payment.Status = domain.PaymentPending
	c.wg.Add(1)
	go c.syncIntentAmount(s.stepCtx, s.ID, s.CartSessionID, s.Epoch, s.bootstrapped, true)
}

// syncIntentAmount доводит сумму платежа до суммы корзины с доставкой.
// claimed означает, что refreshing уже выставлен вызывающим и обновление принадлежит этой задаче.
// Привязан к шагу: результат для устаревшего шага отбрасывается.
func (c *CheckoutUseCase) syncIntentAmount(ctx context.Context, checkoutID, cartSessionID string, epoch uint64, bootstrapped <-chan struct{}, claimed bool) {
	defer c.wg.Done()

	select {
	case <-bootstrapped:
	case <-ctx.Done():
		return
	}

	for ctx.Err() == nil {
		amount := cartAmountMinor(c.cart.Get(ctx, cartSessionID))

		c.mu.Lock()
		s, ok := c.sessions[checkoutID]
		if !ok || s.Epoch != epoch {
			c.mu.Unlock()
			return
		}
		if claimed {
			if s.Payment.AmountMinor == amount {
				s.refreshing = false
				s.Payment.Status = domain.PaymentReady
				c.mu.Unlock()
				return
			}
		} else {
			if s.refreshing || s.Payment.Status != domain.PaymentReady || s.Payment.AmountMinor == amount {
				c.mu.Unlock()
				return
			}
			s.refreshing = true
			s.Payment.Status = domain.PaymentPending
			claimed = true
		}
		intentID := s.Payment.IntentID
		c.mu.Unlock()

		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		err := c.payment.UpdatePaymentIntent(reqCtx, intentID, amount)
		cancel()

		c.mu.Lock()
		if s.Epoch != epoch {
			c.mu.Unlock()
			c.logger.Debugf("Discarding payment amount update for stale step. checkout_id: %s", checkoutID)
			return
		}
		if err != nil {
			s.refreshing = false
			s.Payment.Status = domain.PaymentFailed
			s.Payment.Error = err.Error()
			c.mu.Unlock()
			c.logger.Warnf("Payment intent update failed. checkout_id: %s, error: %v", checkoutID, err)
			return
		}
		// остаёмся pending: следующий проход сверит сумму с корзиной, которая могла измениться
		s.Payment.AmountMinor = amount
		s.UpdatedAt = c.now().UTC()
		c.mu.Unlock()
	}
}

// watchCart следит за изменениями корзины: на шаге оплаты сумма платежа подтягивается к новой сумме.
func (c *CheckoutUseCase) watchCart(ctx context.Context, checkoutID string, updates <-chan domain.Cart) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case cart, ok := <-updates:
			if !ok {
				return
			}
			c.onCartChanged(checkoutID, cart)
		}
	}
}

func (c *CheckoutUseCase) onCartChanged(checkoutID string, cart domain.Cart) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[checkoutID]
	if !ok || s.Step != domain.StepPayment || s.confirming {
		return
	}
	if s.refreshing || s.Payment.Status != domain.PaymentReady || s.Payment.AmountMinor == cartAmountMinor(cart) {
		return
	}

	c.refreshIntent(s)
}

// advance меняет шаг: запросы прошлого шага отменяются, их результаты станут устаревшими.
// Вызывается под c.mu.
func (c *CheckoutUseCase) advance(s *checkoutSession, to domain.CheckoutStep) {
	s.stepCancel()
	s.Epoch++
	s.Step = to
	s.stepCtx, s.stepCancel = context.WithCancel(s.sessionCtx)
	if s.refreshing {
		s.refreshing = false
		s.Payment.Status = domain.PaymentReady
	}
	s.UpdatedAt = c.now().UTC()
}

// release останавливает фоновые задачи оформления. Вызывается под c.mu.
func (c *CheckoutUseCase) release(s *checkoutSession) {
	s.stepCancel()
	s.sessionCancel()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// lookup находит оформление, принадлежащее сессии корзины. Вызывается под c.mu.
func (c *CheckoutUseCase) lookup(cartSessionID, checkoutID string) (*checkoutSession, error) {
	s, ok := c.sessions[checkoutID]
	if !ok || s.CartSessionID != cartSessionID {
		return nil, e.ErrCheckoutNotFound
	}
	s.lastAccess = c.now()

	return s, nil
}

// lookupActive — lookup для операций, которые меняют незавершённое оформление.
func (c *CheckoutUseCase) lookupActive(cartSessionID, checkoutID string) (*checkoutSession, error) {
	s, err := c.lookup(cartSessionID, checkoutID)
	if err != nil {
		return nil, err
	}
	if s.Step.IsTerminal() {
		return nil, e.ErrCheckoutCompleted
	}

	return s, nil
}

// bindToStep возвращает контекст запроса, который отменяется по таймауту,
// по отмене ctx клиента или при смене шага оформления.
func (c *CheckoutUseCase) bindToStep(ctx, stepCtx context.Context) (context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	stop := context.AfterFunc(stepCtx, cancel)

	return reqCtx, func() {
		stop()
		cancel()
	}
}

func successURL(base, orderID string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("order_id", orderID)
	u.RawQuery = q.Encode()

	return u.String()
}
