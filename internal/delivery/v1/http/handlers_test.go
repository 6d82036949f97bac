package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lumenOne = domain.Product{
	ID:       "prod_lumen_one",
	Name:     "Lumen One",
	Price:    decimal.RequireFromString("249.00"),
	Currency: "EUR",
	Weight:   1.8,
	Category: domain.CategoryMain,
}

type fakeCatalog struct{}

func (fakeCatalog) ListProducts(context.Context) []domain.ProductView {
	return []domain.ProductView{domain.MergeDisplay(lumenOne, nil)}
}

func (fakeCatalog) GetProduct(_ context.Context, id string) (*domain.ProductView, error) {
	if id != lumenOne.ID {
		return nil, e.Wrap("fakeCatalog.GetProduct", e.ErrProductNotFound)
	}
	view := domain.MergeDisplay(lumenOne, nil)
	return &view, nil
}

func (fakeCatalog) GetProductsByCategory(_ context.Context, c domain.Category) []domain.ProductView {
	if c != domain.CategoryMain {
		return []domain.ProductView{}
	}
	return []domain.ProductView{domain.MergeDisplay(lumenOne, nil)}
}

func (fakeCatalog) GetAccessoriesForProduct(context.Context, string) []domain.ProductView {
	return []domain.ProductView{}
}

type fakeCart struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

func newFakeCart() *fakeCart {
	return &fakeCart{carts: make(map[string]domain.Cart)}
}

func (f *fakeCart) update(sessionID string, fn func(domain.Cart) domain.Cart) domain.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()

	cart, ok := f.carts[sessionID]
	if !ok {
		cart = domain.NewCart()
	}
	cart = fn(cart)
	f.carts[sessionID] = cart

	return cart
}

func (f *fakeCart) Get(_ context.Context, sessionID string) domain.Cart {
	return f.update(sessionID, func(c domain.Cart) domain.Cart { return c })
}

func (f *fakeCart) AddItem(_ context.Context, sessionID, productID string) (domain.Cart, error) {
	if productID != lumenOne.ID {
		return domain.Cart{}, e.ErrProductNotFound
	}
	return f.update(sessionID, func(c domain.Cart) domain.Cart { return c.AddItem(lumenOne.ProductRef()) }), nil
}

func (f *fakeCart) RemoveItem(_ context.Context, sessionID, productID string) domain.Cart {
	return f.update(sessionID, func(c domain.Cart) domain.Cart { return c.RemoveItem(productID) })
}

func (f *fakeCart) UpdateQuantity(_ context.Context, sessionID, productID string, qty int) domain.Cart {
	return f.update(sessionID, func(c domain.Cart) domain.Cart { return c.UpdateQuantity(productID, qty) })
}

func (f *fakeCart) Clear(_ context.Context, sessionID string) domain.Cart {
	return f.update(sessionID, func(c domain.Cart) domain.Cart { return c.Clear() })
}

func (f *fakeCart) SetShippingMethod(_ context.Context, sessionID string, m *domain.ShippingMethod) domain.Cart {
	return f.update(sessionID, func(c domain.Cart) domain.Cart { return c.SetShippingMethod(m) })
}

func (f *fakeCart) Subscribe(context.Context, string) (<-chan domain.Cart, func()) {
	ch := make(chan domain.Cart)
	return ch, func() {}
}

type fakeShipping struct {
	lastReq *usecase.ShippingRatesReq
}

func (f *fakeShipping) GetShippingRates(_ context.Context, req *usecase.ShippingRatesReq) ([]domain.ShippingMethod, error) {
	f.lastReq = req
	if req.Weight <= 0 {
		return nil, e.Wrap("fakeShipping.GetShippingRates", e.ErrInvalidWeight)
	}
	return []domain.ShippingMethod{{ID: 1, Name: "Standard", Price: "13.50", Currency: "EUR"}}, nil
}

type fakePayment struct {
	err         error
	lastSession *usecase.CreateCheckoutSessionReq
	lastIntent  *usecase.CreatePaymentIntentReq
}

func (f *fakePayment) CreateCheckoutSession(_ context.Context, req *usecase.CreateCheckoutSessionReq) (*usecase.CreateCheckoutSessionRes, error) {
	f.lastSession = req
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.CreateCheckoutSessionRes{URL: "https://pay.example/cs_1"}, nil
}

func (f *fakePayment) CreatePaymentIntent(_ context.Context, req *usecase.CreatePaymentIntentReq) (*usecase.CreatePaymentIntentRes, error) {
	f.lastIntent = req
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.CreatePaymentIntentRes{ClientSecret: "pi_1_secret"}, nil
}

// fakeCheckout записывает аргументы последнего вызова и отдаёт заранее заданный результат.
type fakeCheckout struct {
	err         error
	session     domain.CheckoutSession
	lastCartSID string
	lastID      string
	lastAddr    *domain.Address
	lastMethod  int64
	lastStep    domain.CheckoutStep
	billing     *domain.Address
	billingSeen bool
}

func (f *fakeCheckout) result(cartSID, id string) (*domain.CheckoutSession, error) {
	f.lastCartSID, f.lastID = cartSID, id
	if f.err != nil {
		return nil, f.err
	}
	s := f.session
	return &s, nil
}

func (f *fakeCheckout) Start(_ context.Context, cartSID string) (*domain.CheckoutSession, error) {
	return f.result(cartSID, "")
}

func (f *fakeCheckout) Get(_ context.Context, cartSID, id string) (*domain.CheckoutSession, error) {
	return f.result(cartSID, id)
}

func (f *fakeCheckout) SubmitAddress(_ context.Context, cartSID, id string, addr domain.Address) (*domain.CheckoutSession, error) {
	f.lastAddr = &addr
	return f.result(cartSID, id)
}

func (f *fakeCheckout) SelectShippingMethod(_ context.Context, cartSID, id string, methodID int64) (*domain.CheckoutSession, error) {
	f.lastMethod = methodID
	return f.result(cartSID, id)
}

func (f *fakeCheckout) ProceedToPayment(_ context.Context, cartSID, id string) (*domain.CheckoutSession, error) {
	return f.result(cartSID, id)
}

func (f *fakeCheckout) Back(_ context.Context, cartSID, id string, step domain.CheckoutStep) (*domain.CheckoutSession, error) {
	f.lastStep = step
	return f.result(cartSID, id)
}

func (f *fakeCheckout) ConfirmPayment(_ context.Context, cartSID, id string, billing *domain.Address) (*usecase.ConfirmPaymentRes, error) {
	f.lastCartSID, f.lastID = cartSID, id
	f.billing, f.billingSeen = billing, true
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.ConfirmPaymentRes{
		CheckoutID:  id,
		OrderID:     "ord-1",
		RedirectURL: "https://shop.example/success?order_id=ord-1",
	}, nil
}

type testAPI struct {
	handler  http.Handler
	cart     *fakeCart
	shipping *fakeShipping
	payment  *fakePayment
	checkout *fakeCheckout
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	api := &testAPI{
		cart:     newFakeCart(),
		shipping: &fakeShipping{},
		payment:  &fakePayment{},
		checkout: &fakeCheckout{session: domain.CheckoutSession{ID: "chk-1", Step: domain.StepShipping}},
	}

	mux := chi.NewRouter()
	NewRouter(mux, logger.NewNopLogger()).Init(Usecases{
		Catalog:  fakeCatalog{},
		Cart:     api.cart,
		Shipping: api.shipping,
		Payment:  api.payment,
		Checkout: api.checkout,
	})
	api.handler = mux

	return api
}

func (a *testAPI) do(t *testing.T, method, path, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCatalogRoutes(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/products", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeBody[[]domain.ProductView](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "Lumen One", products[0].Name)

	rec = api.do(t, http.MethodGet, "/api/v1/products?category=main", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/products?category=gadgets", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/products/prod_lumen_one", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/products/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, e.ErrProductNotFound.Error(), decodeBody[ErrorResponse](t, rec).Message)

	rec = api.do(t, http.MethodGet, "/api/v1/products/prod_lumen_one/accessories", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSessionMiddleware_IssuesSessionWhenMissing(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/cart", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	sessionID := rec.Header().Get(SessionHeader)
	require.NotEmpty(t, sessionID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, sessionID, cookies[0].Value)
}

func TestSessionMiddleware_ReadsCookie(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"id":"prod_lumen_one"}`))
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-session"})
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cookie-session", rec.Header().Get(SessionHeader))
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 1, api.cart.Get(context.Background(), "cookie-session").ItemCount())
}

func TestSessionMiddleware_RejectsMalformedID(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/cart", "bad id!", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRoutes(t *testing.T) {
	api := newTestAPI(t)
	const sid = "s1"

	rec := api.do(t, http.MethodPost, "/api/v1/cart/items", sid, `{"id":"prod_lumen_one"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, "/api/v1/cart/items", sid, `{"id":"prod_lumen_one"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cart := decodeBody[CartResponse](t, rec)
	assert.Equal(t, 2, cart.ItemCount)
	assert.Equal(t, "498.00", cart.Total)

	rec = api.do(t, http.MethodPut, "/api/v1/cart/shipping-method", sid,
		`{"method":{"id":1,"name":"Standard","price":"13.50","currency":"EUR"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "511.50", decodeBody[CartResponse](t, rec).TotalWithShipping)

	rec = api.do(t, http.MethodPatch, "/api/v1/cart/items/prod_lumen_one", sid, `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decodeBody[CartResponse](t, rec).ItemCount)

	rec = api.do(t, http.MethodDelete, "/api/v1/cart/items/prod_lumen_one", sid, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeBody[CartResponse](t, rec)
	assert.Zero(t, cart.ItemCount)
	assert.NotNil(t, cart.Items)

	rec = api.do(t, http.MethodPost, "/api/v1/cart/items", sid, `{"id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/v1/cart", sid, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[CartResponse](t, rec).SelectedShippingMethod)
}

func TestCartRoutes_InvalidQuantity(t *testing.T) {
	api := newTestAPI(t)

	for _, body := range []string{`{"quantity":1.5}`, `{"quantity":"2"}`, `{}`, `not json`} {
		rec := api.do(t, http.MethodPatch, "/api/v1/cart/items/prod_lumen_one", "s1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, e.ErrInvalidQuantity.Error(), decodeBody[ErrorResponse](t, rec).Message, body)
	}
}

func TestShippingRatesRoute(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/shipping-rates", "",
		`{"shippingAddress":{"name":"A","line1":"Main 1","city":"Berlin","postal_code":"10115","country":"DE"},"weight":1.5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeBody[ShippingRatesResponse](t, rec)
	require.Len(t, res.ShippingRates, 1)
	assert.Equal(t, "13.50", res.ShippingRates[0].Price)
	assert.Equal(t, "DE", api.shipping.lastReq.ShippingAddress.Country)
	assert.Equal(t, 1.5, api.shipping.lastReq.Weight)

	rec = api.do(t, http.MethodPost, "/api/v1/shipping-rates", "", `{"shippingAddress":{"country":"DE"},"weight":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, e.ErrInvalidWeight.Error(), decodeBody[ErrorResponse](t, rec).Message)
}

func TestPaymentRoutes(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/checkout-sessions", "",
		`{"items":[{"id":"prod_lumen_one","quantity":2}],"successUrl":"https://s","cancelUrl":"https://c"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://pay.example/cs_1", decodeBody[CheckoutSessionResponse](t, rec).URL)
	assert.Equal(t, []usecase.LineItemReq{{ID: "prod_lumen_one", Quantity: 2}}, api.payment.lastSession.Items)

	rec = api.do(t, http.MethodPost, "/api/v1/payment-intents", "",
		`{"items":[{"id":"prod_lumen_one","quantity":1}],"currency":"EUR","shippingCost":"13.50"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pi_1_secret", decodeBody[PaymentIntentResponse](t, rec).ClientSecret)
	assert.True(t, api.payment.lastIntent.ShippingCost.Equal(decimal.RequireFromString("13.50")))

	api.payment.err = e.Wrap("Gateway.CreatePaymentIntent", fmt.Errorf("%w: status 500", e.ErrPaymentProvider))
	rec = api.do(t, http.MethodPost, "/api/v1/payment-intents", "", `{"items":[],"currency":"EUR","shippingCost":"0"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, e.ErrPaymentProvider.Error(), decodeBody[ErrorResponse](t, rec).Message)
}

func TestCheckoutRoutes(t *testing.T) {
	api := newTestAPI(t)
	const sid = "s1"

	rec := api.do(t, http.MethodPost, "/api/v1/checkout", sid, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "chk-1", decodeBody[domain.CheckoutSession](t, rec).ID)
	assert.Equal(t, sid, api.checkout.lastCartSID)

	rec = api.do(t, http.MethodGet, "/api/v1/checkout/chk-1", sid, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chk-1", api.checkout.lastID)

	rec = api.do(t, http.MethodPost, "/api/v1/checkout/chk-1/address", sid,
		`{"name":"A","line1":"Main 1","city":"Berlin","postal_code":"10115","country":"de"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "de", api.checkout.lastAddr.Country)

	rec = api.do(t, http.MethodPost, "/api/v1/checkout/chk-1/shipping-method", sid, `{"methodId":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), api.checkout.lastMethod)

	rec = api.do(t, http.MethodPost, "/api/v1/checkout/chk-1/payment-step", sid, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/checkout/chk-1/back", sid, `{"step":"shipping"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StepShipping, api.checkout.lastStep)
}

func TestCheckoutConfirm(t *testing.T) {
	t.Run("empty body uses shipping address", func(t *testing.T) {
		api := newTestAPI(t)

		rec := api.do(t, http.MethodPost, "/api/v1/checkout/chk-1/confirm", "s1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		res := decodeBody[ConfirmResponse](t, rec)
		assert.Equal(t, "chk-1", res.CheckoutID)
		assert.Equal(t, "ord-1", res.OrderID)
		assert.Equal(t, "https://shop.example/success?order_id=ord-1", res.RedirectURL)
		assert.True(t, api.checkout.billingSeen)
		assert.Nil(t, api.checkout.billing)
	})

	t.Run("billing address passed through", func(t *testing.T) {
		api := newTestAPI(t)

		rec := api.do(t, http.MethodPost, "/api/v1/checkout/chk-1/confirm", "s1", `{"billingAddress":{"name":"B","country":"FR"}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, api.checkout.billing)
		assert.Equal(t, "FR", api.checkout.billing.Country)
	})

	t.Run("declined keeps provider message", func(t *testing.T) {
		api := newTestAPI(t)
		api.checkout.err = e.Wrap("CheckoutUsecase.ConfirmPayment",
			e.Wrap("Gateway.ConfirmPayment", fmt.Errorf("%w: %s", e.ErrPaymentDeclined, "Your card was declined.")))

		rec := api.do(t, http.MethodPost, "/api/v1/checkout/chk-1/confirm", "s1", "")
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Equal(t, "payment declined: Your card was declined.", decodeBody[ErrorResponse](t, rec).Message)
	})

	t.Run("customer action pending is a conflict", func(t *testing.T) {
		api := newTestAPI(t)
		api.checkout.err = e.Wrap("CheckoutUsecase.ConfirmPayment",
			e.Wrap("Gateway.ConfirmPayment", fmt.Errorf("%w: %s", e.ErrPaymentActionRequired, "payment intent is requires_action")))

		rec := api.do(t, http.MethodPost, "/api/v1/checkout/chk-1/confirm", "s1", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "payment requires customer action: payment intent is requires_action", decodeBody[ErrorResponse](t, rec).Message)
	})
}

func TestCheckoutErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{e.ErrCheckoutNotFound, http.StatusNotFound},
		{e.ErrIllegalTransition, http.StatusConflict},
		{e.ErrStaleResult, http.StatusConflict},
		{e.ErrPaymentNotReady, http.StatusConflict},
		{e.ErrIncompleteAddress, http.StatusBadRequest},
		{e.ErrPaymentUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			api := newTestAPI(t)
			api.checkout.err = e.Wrap("CheckoutUsecase.Get", tt.err)

			rec := api.do(t, http.MethodGet, "/api/v1/checkout/chk-1", "s1", "")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.err.Error(), decodeBody[ErrorResponse](t, rec).Message)
		})
	}
}

func TestCheckoutRoutes_InvalidJSON(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/checkout/chk-1/back", "s1", `{"step":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, e.ErrInvalidJSON.Error(), decodeBody[ErrorResponse](t, rec).Message)
}

func TestToHTTPResponse_UnknownErrorIsInternal(t *testing.T) {
	code, msg := ToHTTPResponse(fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, e.ErrInternalServerError.Error(), msg)
}
