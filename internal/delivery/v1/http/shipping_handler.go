package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type ShippingHandler struct {
	shippingUsecase usecase.ShippingUC
	logger          logger.Logger
}

func NewShippingHandler(shippingUsecase usecase.ShippingUC, logger logger.Logger) *ShippingHandler {
	return &ShippingHandler{shippingUsecase: shippingUsecase, logger: logger}
}

// getShippingRates
//
//	@Summary		Расчёт доставки
//	@Description	Способы доставки с ценами для адреса и веса. При недоступности перевозчика цены считаются локально.
//	@Tags			shipping
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ShippingRatesRequest	true	"Адрес и вес, кг"
//	@Success		200		{object}	ShippingRatesResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/shipping-rates [post]
func (s *ShippingHandler) getShippingRates(w http.ResponseWriter, r *http.Request) {
	var req ShippingRatesRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	rates, err := s.shippingUsecase.GetShippingRates(r.Context(), usecase.NewShippingRatesReq(req.ShippingAddress, req.Weight))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ShippingRatesResponse{ShippingRates: rates})
}
