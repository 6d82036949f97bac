package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	checkoutUsecase usecase.CheckoutUC
	logger          logger.Logger
}

func NewCheckoutHandler(checkoutUsecase usecase.CheckoutUC, logger logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkoutUsecase: checkoutUsecase, logger: logger}
}

// startCheckout
//
//	@Summary		Начать оформление
//	@Description	Создаёт оформление на шаге shipping и запускает инициализацию платежа
//	@Tags			checkout
//	@Produce		json
//	@Param			X-Session-ID	header		string	false	"ID сессии корзины"
//	@Success		201				{object}	domain.CheckoutSession
//	@Failure		400				{object}	ErrorResponse
//	@Router			/checkout [post]
func (c *CheckoutHandler) startCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := c.checkoutUsecase.Start(r.Context(), SessionIDFromCtx(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, session)
}

// getCheckout
//
//	@Summary	Состояние оформления
//	@Tags		checkout
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"ID сессии корзины"
//	@Param		id				path		string	true	"ID оформления"
//	@Success	200				{object}	domain.CheckoutSession
//	@Failure	404				{object}	ErrorResponse
//	@Router		/checkout/{id} [get]
func (c *CheckoutHandler) getCheckout(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, func() (*domain.CheckoutSession, error) {
		return c.checkoutUsecase.Get(r.Context(), SessionIDFromCtx(r.Context()), chi.URLParam(r, "id"))
	})
}

// submitAddress
//
//	@Summary		Адрес доставки
//	@Description	Получает способы доставки, выбирает первый и переводит оформление на шаг shipping-method
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string			false	"ID сессии корзины"
//	@Param			id				path		string			true	"ID оформления"
//	@Param			body			body		domain.Address	true	"Адрес"
//	@Success		200				{object}	domain.CheckoutSession
//	@Failure		400				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Router			/checkout/{id}/address [post]
func (c *CheckoutHandler) submitAddress(w http.ResponseWriter, r *http.Request) {
	var addr domain.Address
	if err := decodeJSON(w, r, &addr, false); err != nil {
		WriteError(w, err)
		return
	}

	c.respond(w, r, func() (*domain.CheckoutSession, error) {
		return c.checkoutUsecase.SubmitAddress(r.Context(), SessionIDFromCtx(r.Context()), chi.URLParam(r, "id"), addr)
	})
}

// selectShippingMethod
//
//	@Summary	Выбор способа доставки
//	@Tags		checkout
//	@Accept		json
//	@Produce	json
//	@Param		X-Session-ID	header		string						false	"ID сессии корзины"
//	@Param		id				path		string						true	"ID оформления"
//	@Param		body			body		SelectShippingMethodRequest	true	"ID способа"
//	@Success	200				{object}	domain.CheckoutSession
//	@Failure	400				{object}	ErrorResponse
//	@Router		/checkout/{id}/shipping-method [post]
func (c *CheckoutHandler) selectShippingMethod(w http.ResponseWriter, r *http.Request) {
	var req SelectShippingMethodRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	c.respond(w, r, func() (*domain.CheckoutSession, error) {
		return c.checkoutUsecase.SelectShippingMethod(r.Context(), SessionIDFromCtx(r.Context()), chi.URLParam(r, "id"), req.MethodID)
	})
}

// proceedToPayment
//
//	@Summary	Переход к оплате
//	@Tags		checkout
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"ID сессии корзины"
//	@Param		id				path		string	true	"ID оформления"
//	@Success	200				{object}	domain.CheckoutSession
//	@Failure	400				{object}	ErrorResponse
//	@Failure	409				{object}	ErrorResponse
//	@Router		/checkout/{id}/payment-step [post]
func (c *CheckoutHandler) proceedToPayment(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, func() (*domain.CheckoutSession, error) {
		return c.checkoutUsecase.ProceedToPayment(r.Context(), SessionIDFromCtx(r.Context()), chi.URLParam(r, "id"))
	})
}

// back
//
//	@Summary	Возврат на предыдущий шаг
//	@Tags		checkout
//	@Accept		json
//	@Produce	json
//	@Param		X-Session-ID	header		string		false	"ID сессии корзины"
//	@Param		id				path		string		true	"ID оформления"
//	@Param		body			body		BackRequest	true	"Шаг"
//	@Success	200				{object}	domain.CheckoutSession
//	@Failure	400				{object}	ErrorResponse
//	@Failure	409				{object}	ErrorResponse
//	@Router		/checkout/{id}/back [post]
func (c *CheckoutHandler) back(w http.ResponseWriter, r *http.Request) {
	var req BackRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	c.respond(w, r, func() (*domain.CheckoutSession, error) {
		return c.checkoutUsecase.Back(r.Context(), SessionIDFromCtx(r.Context()), chi.URLParam(r, "id"), req.Step)
	})
}

// confirmPayment
//
//	@Summary		Подтверждение оплаты
//	@Description	Без billingAddress используется адрес доставки. При отказе или незавершённом 3-D Secure (409) оформление остаётся на шаге payment.
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string			false	"ID сессии корзины"
//	@Param			id				path		string			true	"ID оформления"
//	@Param			body			body		ConfirmRequest	false	"Адрес плательщика"
//	@Success		200				{object}	ConfirmResponse
//	@Failure		402				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Router			/checkout/{id}/confirm [post]
func (c *CheckoutHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	checkoutID := chi.URLParam(r, "id")
	res, err := c.checkoutUsecase.ConfirmPayment(r.Context(), SessionIDFromCtx(r.Context()), checkoutID, req.BillingAddress)
	if err != nil {
		c.logger.Warnf("confirm failed. checkout_id: %s, error: %v", checkoutID, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ConfirmResponse{
		CheckoutID:  res.CheckoutID,
		OrderID:     res.OrderID,
		RedirectURL: res.RedirectURL,
	})
}

func (c *CheckoutHandler) respond(w http.ResponseWriter, r *http.Request, fn func() (*domain.CheckoutSession, error)) {
	session, err := fn()
	if err != nil {
		c.logger.Debugf("%s %s: %v", r.Method, r.URL.Path, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, session)
}
