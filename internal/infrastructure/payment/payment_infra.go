package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
)

const maxResponseBytes = 1 << 20

// Gateway — клиент внешнего платёжного API. Запросы отправляются form-encoded,
// суммы передаются в минорных единицах валюты.
type Gateway struct {
	httpClient *http.Client
	cfg        *cfg.PaymentCfg
	logger     logger.Logger
}

func NewGateway(cfg *cfg.PaymentCfg, logger logger.Logger) *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// CreateCheckoutSession создаёт сессию оплаты на странице провайдера и возвращает её URL.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req *usecase.PaymentCheckoutSessionReq) (string, error) {
	const op = "Gateway.CreateCheckoutSession"

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	for i, item := range req.Items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", strings.ToLower(item.Currency))
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmountMinor, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][product_data][metadata][product_id]", item.ProductID)
	}

	var res checkoutSessionResponse
	if err := g.post(ctx, "/checkout/sessions", form, "", &res); err != nil {
		return "", e.Wrap(op, err)
	}
	if res.URL == "" {
		return "", e.Wrap(op, fmt.Errorf("%w: checkout session %s has no url", e.ErrPaymentProvider, res.ID))
	}

	g.logger.Debugf("Checkout session created. session_id: %s", res.ID)
	return res.URL, nil
}

// CreatePaymentIntent создаёт намерение оплаты. IdempotencyKey передаётся провайдеру,
// чтобы повтор запроса не создал второе намерение.
func (g *Gateway) CreatePaymentIntent(ctx context.Context, req *usecase.PaymentIntentReq) (*usecase.PaymentIntent, error) {
	const op = "Gateway.CreatePaymentIntent"

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("metadata[shipping_cost]", strconv.FormatInt(req.ShippingCostMinor, 10))
	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, fmt.Sprintf("%s:%d", item.ProductID, item.Quantity))
	}
	form.Set("metadata[items]", strings.Join(ids, ","))

	var res paymentIntentResponse
	if err := g.post(ctx, "/payment_intents", form, req.IdempotencyKey, &res); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &usecase.PaymentIntent{
		ID:           res.ID,
		ClientSecret: res.ClientSecret,
		AmountMinor:  res.Amount,
		Currency:     strings.ToUpper(res.Currency),
	}, nil
}

// UpdatePaymentIntent меняет сумму существующего намерения.
func (g *Gateway) UpdatePaymentIntent(ctx context.Context, intentID string, amountMinor int64) error {
	const op = "Gateway.UpdatePaymentIntent"

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))

	var res paymentIntentResponse
	if err := g.post(ctx, "/payment_intents/"+url.PathEscape(intentID), form, "", &res); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// ConfirmPayment подтверждает намерение с адресами покупателя. Успехом считаются только
// succeeded, processing и requires_capture. Отказ возвращается как e.ErrPaymentDeclined,
// незавершённый шаг покупателя как e.ErrPaymentActionRequired.
// Повторное подтверждение после 3-D Secure провайдер отклоняет, тогда статус читается заново.
func (g *Gateway) ConfirmPayment(ctx context.Context, req *usecase.ConfirmPaymentReq) error {
	const op = "Gateway.ConfirmPayment"

	form := url.Values{}
	form.Set("return_url", req.ReturnURL)
	setAddress(form, "shipping", req.Shipping)
	form.Set("shipping[name]", req.Shipping.Name)
	if req.Shipping.Phone != "" {
		form.Set("shipping[phone]", req.Shipping.Phone)
	}
	setAddress(form, "payment_method_data[billing_details]", req.Billing)
	form.Set("payment_method_data[billing_details][name]", req.Billing.Name)
	if req.Billing.Email != "" {
		form.Set("payment_method_data[billing_details][email]", req.Billing.Email)
	}

	path := "/payment_intents/" + url.PathEscape(req.IntentID)

	var res paymentIntentResponse
	err := g.do(ctx, http.MethodPost, path+"/confirm", form, "", &res)
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.code == codeUnexpectedState {
		err = g.do(ctx, http.MethodGet, path, nil, "", &res)
	}
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := confirmResult(&res); err != nil {
		g.logger.Warnf("Payment not completed. intent_id: %s, status: %s", req.IntentID, res.Status)
		return e.Wrap(op, err)
	}

	g.logger.Infof("Payment confirmed. intent_id: %s, status: %s", req.IntentID, res.Status)
	return nil
}

// confirmResult сопоставляет статус намерения результату подтверждения.
func confirmResult(res *paymentIntentResponse) error {
	switch res.Status {
	case statusSucceeded, statusProcessing, statusRequiresCapture:
		return nil
	case statusRequiresPaymentMethod, statusCanceled:
		return fmt.Errorf("%w: payment intent is %s", e.ErrPaymentDeclined, res.Status)
	case statusRequiresAction, statusRequiresConfirmation:
		if res.NextAction != nil && res.NextAction.RedirectToURL.URL != "" {
			return fmt.Errorf("%w: payment intent is %s, redirect to %s",
				e.ErrPaymentActionRequired, res.Status, res.NextAction.RedirectToURL.URL)
		}
		return fmt.Errorf("%w: payment intent is %s", e.ErrPaymentActionRequired, res.Status)
	default:
		return fmt.Errorf("%w: unexpected payment intent status %q", e.ErrPaymentProvider, res.Status)
	}
}

// post отправляет form-encoded запрос и декодирует ответ в out.
func (g *Gateway) post(ctx context.Context, path string, form url.Values, idempotencyKey string, out any) error {
	return g.do(ctx, http.MethodPost, path, form, idempotencyKey, out)
}

func (g *Gateway) do(ctx context.Context, method, path string, form url.Values, idempotencyKey string, out any) error {
	if !g.cfg.Enabled() {
		return e.ErrPaymentUnavailable
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, body)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", e.ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", e.ErrPaymentProvider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return providerError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", e.ErrPaymentProvider, err)
	}

	return nil
}

// apiError — ответ провайдера с ошибкой. code нужен, чтобы отличить ожидаемые состояния.
type apiError struct {
	code string
	err  error
}

func (a *apiError) Error() string { return a.err.Error() }

func (a *apiError) Unwrap() error { return a.err }

// providerError превращает ответ с ошибкой в sentinel: отказ по карте даёт ErrPaymentDeclined,
// остальное ErrPaymentProvider. Текст провайдера сохраняется.
func providerError(status int, body []byte) error {
	var res errorResponse
	_ = json.Unmarshal(body, &res)

	msg := res.Error.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	apiErr := &apiError{code: res.Error.Code}
	if res.Error.Type == errTypeCard || status == http.StatusPaymentRequired {
		apiErr.err = fmt.Errorf("%w: %s", e.ErrPaymentDeclined, msg)
	} else {
		apiErr.err = fmt.Errorf("%w: status %d: %s", e.ErrPaymentProvider, status, msg)
	}

	return apiErr
}

func setAddress(form url.Values, prefix string, addr domain.Address) {
	set := func(field, value string) {
		if value != "" {
			form.Set(prefix+"[address]["+field+"]", value)
		}
	}

	set("line1", addr.Line1)
	set("line2", addr.Line2)
	set("city", addr.City)
	set("state", addr.State)
	set("postal_code", addr.PostalCode)
	set("country", addr.Country)
}
