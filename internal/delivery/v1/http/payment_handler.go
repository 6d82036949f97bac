package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUC
	logger         logger.Logger
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUC, logger logger.Logger) *PaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase, logger: logger}
}

// createCheckoutSession
//
//	@Summary		Сессия оплаты на стороне провайдера
//	@Description	Возвращает URL страницы оплаты. Цены берутся из каталога.
//	@Tags			payment
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CheckoutSessionRequest	true	"Позиции и URL возврата"
//	@Success		200		{object}	CheckoutSessionResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/checkout-sessions [post]
func (p *PaymentHandler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutSessionRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	res, err := p.paymentUsecase.CreateCheckoutSession(r.Context(), &usecase.CreateCheckoutSessionReq{
		Items:      toLineItems(req.Items),
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, CheckoutSessionResponse{URL: res.URL})
}

// createPaymentIntent
//
//	@Summary	Намерение оплаты
//	@Tags		payment
//	@Accept		json
//	@Produce	json
//	@Param		body	body		PaymentIntentRequest	true	"Позиции, валюта и стоимость доставки"
//	@Success	200		{object}	PaymentIntentResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	502		{object}	ErrorResponse
//	@Router		/payment-intents [post]
func (p *PaymentHandler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req PaymentIntentRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	res, err := p.paymentUsecase.CreatePaymentIntent(r.Context(), &usecase.CreatePaymentIntentReq{
		Items:        toLineItems(req.Items),
		Currency:     req.Currency,
		ShippingCost: req.ShippingCost,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, PaymentIntentResponse{ClientSecret: res.ClientSecret})
}
