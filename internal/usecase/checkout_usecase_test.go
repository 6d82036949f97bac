package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartSID = "cart-session-1"

var testMethods = []domain.ShippingMethod{
	{ID: 1, Name: "PostNL Standard", Price: "6.95", Currency: "EUR", MinDeliveryTime: 1, MaxDeliveryTime: 2, Carrier: "postnl"},
	{ID: 2, Name: "PostNL Express", Price: "12.50", Currency: "EUR", MinDeliveryTime: 1, MaxDeliveryTime: 1, Carrier: "postnl"},
}

var testAddress = domain.Address{
	Name:       "Ada Lovelace",
	Email:      "ada@example.test",
	Line1:      "Keizersgracht 1",
	City:       "Amsterdam",
	PostalCode: "1015CJ",
	Country:    "nl",
}

type checkoutFixture struct {
	uc       *CheckoutUseCase
	cart     *CartUseCase
	shipping *fakeShipping
	payment  *fakePayment
	orders   *fakeOrders
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	f := &checkoutFixture{
		cart:     newTestCartUC(newMemCartRepo()),
		shipping: &fakeShipping{methods: testMethods},
		payment:  &fakePayment{},
		orders:   &fakeOrders{},
	}
	f.uc = NewCheckoutUC(
		f.cart,
		f.shipping,
		f.payment,
		f.orders,
		&cfg.CheckoutCfg{SessionTTL: time.Hour, RequestTimeout: 5 * time.Second, DefaultCurrency: "EUR"},
		&cfg.PaymentCfg{SecretKey: "sk_test", ReturnURL: "https://shop.test/return", SuccessURL: "https://shop.test/success"},
		logger.NewNopLogger(),
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, f.uc.Shutdown(ctx))
	})

	_, err := f.cart.AddItem(context.Background(), cartSID, "prod_lumen_one")
	require.NoError(t, err)

	return f
}

func (f *checkoutFixture) waitPayment(t *testing.T, id string, status domain.PaymentStatus, amount int64) {
	t.Helper()

	require.Eventually(t, func() bool {
		s, err := f.uc.Get(context.Background(), cartSID, id)
		return err == nil && s.Payment.Status == status && s.Payment.AmountMinor == amount
	}, 2*time.Second, 5*time.Millisecond)
}

// toPayment проводит оформление до шага payment с готовым платежом.
func (f *checkoutFixture) toPayment(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)
	_, err = f.uc.SubmitAddress(ctx, cartSID, s.ID, testAddress)
	require.NoError(t, err)
	_, err = f.uc.ProceedToPayment(ctx, cartSID, s.ID)
	require.NoError(t, err)

	// 249.00 + 6.95
	f.waitPayment(t, s.ID, domain.PaymentReady, 25595)

	return s.ID
}

func TestCheckoutUseCase_StartRejectsEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.uc.Start(context.Background(), "empty-session")
	require.ErrorIs(t, err, e.ErrEmptyCart)
}

func TestCheckoutUseCase_StartBootstrapsPaymentIntent(t *testing.T) {
	f := newCheckoutFixture(t)

	s, err := f.uc.Start(context.Background(), cartSID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepShipping, s.Step)
	assert.Equal(t, domain.PaymentPending, s.Payment.Status)

	f.waitPayment(t, s.ID, domain.PaymentReady, 24900)

	got, err := f.uc.Get(context.Background(), cartSID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", got.Payment.ClientSecret)
	assert.Equal(t, "EUR", got.Payment.Currency)
	require.NotNil(t, f.payment.lastIntent())
	assert.Len(t, f.payment.lastIntent().Items, 1)
}

func TestCheckoutUseCase_GetForeignCartSession(t *testing.T) {
	f := newCheckoutFixture(t)

	s, err := f.uc.Start(context.Background(), cartSID)
	require.NoError(t, err)

	_, err = f.uc.Get(context.Background(), "someone-else", s.ID)
	require.ErrorIs(t, err, e.ErrCheckoutNotFound)
}

func TestCheckoutUseCase_SubmitIncompleteAddressKeepsStep(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)

	addr := testAddress
	addr.PostalCode = ""
	_, err = f.uc.SubmitAddress(ctx, cartSID, s.ID, addr)
	require.ErrorIs(t, err, e.ErrIncompleteAddress)

	got, err := f.uc.Get(ctx, cartSID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepShipping, got.Step)
	assert.Zero(t, f.shipping.calls)
}

func TestCheckoutUseCase_SubmitAddressAutoSelectsFirstMethod(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)

	got, err := f.uc.SubmitAddress(ctx, cartSID, s.ID, testAddress)
	require.NoError(t, err)
	assert.Equal(t, domain.StepShippingMethod, got.Step)
	assert.Len(t, got.ShippingMethods, 2)
	require.NotNil(t, got.ShippingAddress)
	assert.Equal(t, "NL", got.ShippingAddress.Country)

	cart := f.cart.Get(ctx, cartSID)
	require.NotNil(t, cart.SelectedShippingMethod)
	assert.Equal(t, int64(1), cart.SelectedShippingMethod.ID)
}

func TestCheckoutUseCase_SelectShippingMethod(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)
	_, err = f.uc.SubmitAddress(ctx, cartSID, s.ID, testAddress)
	require.NoError(t, err)

	_, err = f.uc.SelectShippingMethod(ctx, cartSID, s.ID, 99)
	require.ErrorIs(t, err, e.ErrUnknownShippingMethod)

	_, err = f.uc.SelectShippingMethod(ctx, cartSID, s.ID, 2)
	require.NoError(t, err)

	cart := f.cart.Get(ctx, cartSID)
	require.NotNil(t, cart.SelectedShippingMethod)
	assert.Equal(t, "12.50", cart.SelectedShippingMethod.Price)
}

func TestCheckoutUseCase_SkipAheadRejected(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)

	_, err = f.uc.ProceedToPayment(ctx, cartSID, s.ID)
	require.ErrorIs(t, err, e.ErrIllegalTransition)

	_, err = f.uc.SelectShippingMethod(ctx, cartSID, s.ID, 1)
	require.ErrorIs(t, err, e.ErrIllegalTransition)

	_, err = f.uc.ConfirmPayment(ctx, cartSID, s.ID, nil)
	require.ErrorIs(t, err, e.ErrIllegalTransition)
}

func TestCheckoutUseCase_ProceedRequiresSelectedMethod(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)
	_, err = f.uc.SubmitAddress(ctx, cartSID, s.ID, testAddress)
	require.NoError(t, err)

	f.cart.SetShippingMethod(ctx, cartSID, nil)

	_, err = f.uc.ProceedToPayment(ctx, cartSID, s.ID)
	require.ErrorIs(t, err, e.ErrNoShippingMethod)

	got, err := f.uc.Get(ctx, cartSID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepShippingMethod, got.Step)
}

func TestCheckoutUseCase_ProceedRefreshesIntentAmount(t *testing.T) {
	f := newCheckoutFixture(t)

	f.toPayment(t)

	f.payment.mu.Lock()
	defer f.payment.mu.Unlock()
	assert.Equal(t, []int64{25595}, f.payment.updates)
}

func TestCheckoutUseCase_ConfirmRightAfterProceedWaitsForAmountUpdate(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)
	f.waitPayment(t, s.ID, domain.PaymentReady, 24900)

	release := f.payment.holdUpdates()
	_, err = f.uc.SubmitAddress(ctx, cartSID, s.ID, testAddress)
	require.NoError(t, err)

	got, err := f.uc.ProceedToPayment(ctx, cartSID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, got.Payment.Status)

	_, err = f.uc.ConfirmPayment(ctx, cartSID, s.ID, nil)
	require.ErrorIs(t, err, e.ErrPaymentNotReady)
	assert.Zero(t, f.payment.confirmCount())

	release()
	f.waitPayment(t, s.ID, domain.PaymentReady, 25595)

	_, err = f.uc.ConfirmPayment(ctx, cartSID, s.ID, nil)
	require.NoError(t, err)

	orders := f.orders.recorded()
	require.Len(t, orders, 1)
	assert.Equal(t, f.payment.chargedAmount(), domain.MinorUnits(orders[0].Total))
	assert.Equal(t, int64(25595), f.payment.chargedAmount())
}

func TestCheckoutUseCase_ConfirmAfterCartChangeOnPaymentStep(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	id := f.toPayment(t)
	release := f.payment.holdUpdates()

	_, err := f.cart.AddItem(ctx, cartSID, "prod_wall_mount")
	require.NoError(t, err)

	_, err = f.uc.ConfirmPayment(ctx, cartSID, id, nil)
	require.ErrorIs(t, err, e.ErrPaymentNotReady)
	assert.Zero(t, f.payment.confirmCount())

	release()
	// 249.00 + 29.00 + 6.95
	f.waitPayment(t, id, domain.PaymentReady, 28495)

	_, err = f.uc.ConfirmPayment(ctx, cartSID, id, nil)
	require.NoError(t, err)

	orders := f.orders.recorded()
	require.Len(t, orders, 1)
	assert.Equal(t, int64(28495), f.payment.chargedAmount())
	assert.Equal(t, f.payment.chargedAmount(), domain.MinorUnits(orders[0].Total))
	assert.Len(t, orders[0].Items, 2)
}

func TestCheckoutUseCase_ConfirmRejectsIntentBehindCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	id := f.toPayment(t)

	// намерение готово, но сумма отстаёт от корзины
	f.uc.mu.Lock()
	f.uc.sessions[id].Payment.AmountMinor = 24900
	f.uc.mu.Unlock()

	_, err := f.uc.ConfirmPayment(ctx, cartSID, id, nil)
	require.ErrorIs(t, err, e.ErrPaymentNotReady)
	assert.Zero(t, f.payment.confirmCount())

	f.waitPayment(t, id, domain.PaymentReady, 25595)
	_, err = f.uc.ConfirmPayment(ctx, cartSID, id, nil)
	require.NoError(t, err)
}

func TestCheckoutUseCase_BackKeepsSelections(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	id := f.toPayment(t)
	_, err := f.uc.SelectShippingMethod(ctx, cartSID, id, 2)
	require.ErrorIs(t, err, e.ErrIllegalTransition)

	got, err := f.uc.Back(ctx, cartSID, id, domain.StepShipping)
	require.NoError(t, err)
	assert.Equal(t, domain.StepShipping, got.Step)
	assert.Len(t, got.ShippingMethods, 2)
	require.NotNil(t, got.ShippingAddress)

	cart := f.cart.Get(ctx, cartSID)
	require.NotNil(t, cart.SelectedShippingMethod)
	assert.Equal(t, int64(1), cart.SelectedShippingMethod.ID)
	assert.Equal(t, 1, f.shipping.calls)

	_, err = f.uc.Back(ctx, cartSID, id, domain.StepPayment)
	require.ErrorIs(t, err, e.ErrIllegalTransition)

	_, err = f.uc.Back(ctx, cartSID, id, domain.CheckoutStep("review"))
	require.ErrorIs(t, err, e.ErrInvalidCheckoutStep)
}

func TestCheckoutUseCase_StaleShippingRatesDiscarded(t *testing.T) {
	f := newCheckoutFixture(t)
	f.shipping.block = true
	f.shipping.entered = make(chan struct{})
	f.shipping.methods = testMethods
	ctx := context.Background()

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)

	staleErr := make(chan error, 1)
	go func() {
		_, err := f.uc.SubmitAddress(ctx, cartSID, s.ID, testAddress)
		staleErr <- err
	}()
	<-f.shipping.entered

	addr := testAddress
	addr.City = "Utrecht"
	got, err := f.uc.SubmitAddress(ctx, cartSID, s.ID, addr)
	require.NoError(t, err)
	assert.Equal(t, domain.StepShippingMethod, got.Step)

	select {
	case err := <-staleErr:
		require.ErrorIs(t, err, e.ErrStaleResult)
	case <-time.After(2 * time.Second):
		t.Fatal("stale request was not cancelled by the step change")
	}

	got, err = f.uc.Get(ctx, cartSID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Utrecht", got.ShippingAddress.City)
}

func TestCheckoutUseCase_ConfirmBeforePaymentReady(t *testing.T) {
	f := newCheckoutFixture(t)
	f.payment.gate = make(chan struct{})
	ctx := context.Background()

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)
	_, err = f.uc.SubmitAddress(ctx, cartSID, s.ID, testAddress)
	require.NoError(t, err)
	_, err = f.uc.ProceedToPayment(ctx, cartSID, s.ID)
	require.NoError(t, err)

	_, err = f.uc.ConfirmPayment(ctx, cartSID, s.ID, nil)
	require.ErrorIs(t, err, e.ErrPaymentNotReady)

	close(f.payment.gate)
	f.waitPayment(t, s.ID, domain.PaymentReady, 25595)

	_, err = f.uc.ConfirmPayment(ctx, cartSID, s.ID, nil)
	require.NoError(t, err)
}

func TestCheckoutUseCase_BootstrapFailureRetriedOnProceed(t *testing.T) {
	f := newCheckoutFixture(t)
	f.payment.createErr = e.ErrPaymentUnavailable
	ctx := context.Background()

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		got, err := f.uc.Get(ctx, cartSID, s.ID)
		return err == nil && got.Payment.Status == domain.PaymentFailed && got.Payment.Error != ""
	}, 2*time.Second, 5*time.Millisecond)

	_, err = f.uc.SubmitAddress(ctx, cartSID, s.ID, testAddress)
	require.NoError(t, err)

	f.payment.mu.Lock()
	f.payment.createErr = nil
	f.payment.mu.Unlock()

	_, err = f.uc.ProceedToPayment(ctx, cartSID, s.ID)
	require.NoError(t, err)
	f.waitPayment(t, s.ID, domain.PaymentReady, 25595)
}

func TestCheckoutUseCase_DeclineStaysInPayment(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	id := f.toPayment(t)
	f.payment.setConfirmErr(e.Wrap("card_declined", e.ErrPaymentDeclined))

	_, err := f.uc.ConfirmPayment(ctx, cartSID, id, nil)
	require.ErrorIs(t, err, e.ErrPaymentDeclined)

	got, err := f.uc.Get(ctx, cartSID, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPayment, got.Step)
	assert.Contains(t, got.Payment.Error, "card_declined")
	assert.Empty(t, f.orders.recorded())
	assert.False(t, f.cart.Get(ctx, cartSID).IsEmpty())

	f.payment.setConfirmErr(nil)
	_, err = f.uc.ConfirmPayment(ctx, cartSID, id, nil)
	require.NoError(t, err)
}

func TestCheckoutUseCase_ActionRequiredDoesNotComplete(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	id := f.toPayment(t)
	f.payment.setConfirmErr(e.Wrap("Gateway.ConfirmPayment", e.ErrPaymentActionRequired))

	_, err := f.uc.ConfirmPayment(ctx, cartSID, id, nil)
	require.ErrorIs(t, err, e.ErrPaymentActionRequired)

	got, err := f.uc.Get(ctx, cartSID, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPayment, got.Step)
	assert.Equal(t, domain.PaymentReady, got.Payment.Status)
	assert.Contains(t, got.Payment.Error, "customer action")
	assert.Empty(t, f.orders.recorded())
	assert.False(t, f.cart.Get(ctx, cartSID).IsEmpty())

	f.payment.setConfirmErr(nil)
	_, err = f.uc.ConfirmPayment(ctx, cartSID, id, nil)
	require.NoError(t, err)
	assert.Len(t, f.orders.recorded(), 1)
}

func TestCheckoutUseCase_ConfirmCompletesCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	id := f.toPayment(t)

	billing := testAddress
	billing.Name = "Charles Babbage"
	res, err := f.uc.ConfirmPayment(ctx, cartSID, id, &billing)
	require.NoError(t, err)
	assert.NotEmpty(t, res.OrderID)
	assert.Equal(t, "https://shop.test/success?order_id="+res.OrderID, res.RedirectURL)

	orders := f.orders.recorded()
	require.Len(t, orders, 1)
	assert.Equal(t, res.OrderID, orders[0].ID)
	assert.Equal(t, "pi_1", orders[0].PaymentIntentID)
	assert.Equal(t, "Charles Babbage", orders[0].BillingAddress.Name)
	assert.Equal(t, "Ada Lovelace", orders[0].ShippingAddress.Name)
	assert.Equal(t, "255.95", orders[0].Total.StringFixed(2))

	cart := f.cart.Get(ctx, cartSID)
	assert.True(t, cart.IsEmpty())
	assert.Nil(t, cart.SelectedShippingMethod)

	got, err := f.uc.Get(ctx, cartSID, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StepCompleted, got.Step)
	assert.Equal(t, res.OrderID, got.OrderID)

	_, err = f.uc.Back(ctx, cartSID, id, domain.StepShipping)
	require.ErrorIs(t, err, e.ErrCheckoutCompleted)
	_, err = f.uc.ConfirmPayment(ctx, cartSID, id, nil)
	require.ErrorIs(t, err, e.ErrCheckoutCompleted)
}

func TestCheckoutUseCase_OrderFailureStillCompletes(t *testing.T) {
	f := newCheckoutFixture(t)
	f.orders.err = errors.New("db down")

	id := f.toPayment(t)

	res, err := f.uc.ConfirmPayment(context.Background(), cartSID, id, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.OrderID)
	assert.True(t, f.cart.Get(context.Background(), cartSID).IsEmpty())
}

func TestCheckoutUseCase_CartChangeOnPaymentStepUpdatesIntent(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	id := f.toPayment(t)

	_, err := f.cart.AddItem(ctx, cartSID, "prod_wall_mount")
	require.NoError(t, err)

	// 249.00 + 29.00 + 6.95
	f.waitPayment(t, id, domain.PaymentReady, 28495)
}

func TestCheckoutUseCase_EvictExpired(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	now := time.Now()
	f.uc.now = func() time.Time { return now }

	s, err := f.uc.Start(ctx, cartSID)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, f.uc.evictExpired())

	_, err = f.uc.Get(ctx, cartSID, s.ID)
	require.ErrorIs(t, err, e.ErrCheckoutNotFound)
}
