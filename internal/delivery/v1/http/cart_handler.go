package http

import (
	"errors"
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartUsecase usecase.CartUC
	logger      logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, logger: logger}
}

// getCart
//
//	@Summary	Корзина текущей сессии
//	@Tags		cart
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"ID сессии корзины"
//	@Success	200				{object}	CartResponse
//	@Router		/cart [get]
func (c *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	cart := c.cartUsecase.Get(r.Context(), SessionIDFromCtx(r.Context()))
	WriteSuccess(w, http.StatusOK, NewCartResponse(cart))
}

// addItem
//
//	@Summary		Добавить товар
//	@Description	Увеличивает количество на 1 или добавляет позицию с количеством 1
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string			false	"ID сессии корзины"
//	@Param			body			body		AddItemRequest	true	"Товар"
//	@Success		200				{object}	CartResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/cart/items [post]
func (c *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		c.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	cart, err := c.cartUsecase.AddItem(r.Context(), SessionIDFromCtx(r.Context()), req.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewCartResponse(cart))
}

// updateQuantity
//
//	@Summary		Изменить количество
//	@Description	quantity <= 0 удаляет позицию
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string					false	"ID сессии корзины"
//	@Param			id				path		string					true	"ID товара"
//	@Param			body			body		UpdateQuantityRequest	true	"Количество"
//	@Success		200				{object}	CartResponse
//	@Failure		400				{object}	ErrorResponse
//	@Router			/cart/items/{id} [patch]
func (c *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		// дробное или строковое количество
		if errors.Is(err, e.ErrInvalidJSON) {
			err = errors.Join(e.ErrInvalidQuantity, err)
		}
		WriteError(w, err)
		return
	}
	if req.Quantity == nil {
		WriteError(w, e.ErrInvalidQuantity)
		return
	}

	cart := c.cartUsecase.UpdateQuantity(r.Context(), SessionIDFromCtx(r.Context()), chi.URLParam(r, "id"), *req.Quantity)
	WriteSuccess(w, http.StatusOK, NewCartResponse(cart))
}

// removeItem
//
//	@Summary	Удалить позицию
//	@Tags		cart
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"ID сессии корзины"
//	@Param		id				path		string	true	"ID товара"
//	@Success	200				{object}	CartResponse
//	@Router		/cart/items/{id} [delete]
func (c *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	cart := c.cartUsecase.RemoveItem(r.Context(), SessionIDFromCtx(r.Context()), chi.URLParam(r, "id"))
	WriteSuccess(w, http.StatusOK, NewCartResponse(cart))
}

// clearCart
//
//	@Summary	Очистить корзину
//	@Tags		cart
//	@Produce	json
//	@Param		X-Session-ID	header		string	false	"ID сессии корзины"
//	@Success	200				{object}	CartResponse
//	@Router		/cart [delete]
func (c *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	cart := c.cartUsecase.Clear(r.Context(), SessionIDFromCtx(r.Context()))
	WriteSuccess(w, http.StatusOK, NewCartResponse(cart))
}

// setShippingMethod
//
//	@Summary		Выбрать способ доставки
//	@Description	null снимает выбор
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string						false	"ID сессии корзины"
//	@Param			body			body		SetShippingMethodRequest	true	"Способ доставки"
//	@Success		200				{object}	CartResponse
//	@Failure		400				{object}	ErrorResponse
//	@Router			/cart/shipping-method [put]
func (c *CartHandler) setShippingMethod(w http.ResponseWriter, r *http.Request) {
	var req SetShippingMethodRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	cart := c.cartUsecase.SetShippingMethod(r.Context(), SessionIDFromCtx(r.Context()), req.Method)
	WriteSuccess(w, http.StatusOK, NewCartResponse(cart))
}
