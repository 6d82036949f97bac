package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse сопоставляет sentinel-ошибку коду ответа. Текст ошибки отдаётся клиенту
// целиком для ошибок клиента и отказа в оплате: в нём сообщение провайдера.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest),
		errors.Is(err, e.ErrInvalidJSON),
		errors.Is(err, e.ErrMissingSessionID),
		errors.Is(err, e.ErrInvalidQuantity),
		errors.Is(err, e.ErrInvalidWeight),
		errors.Is(err, e.ErrIncompleteAddress),
		errors.Is(err, e.ErrNoShippingMethod),
		errors.Is(err, e.ErrUnknownShippingMethod),
		errors.Is(err, e.ErrInvalidCheckoutStep),
		errors.Is(err, e.ErrEmptyCart),
		errors.Is(err, e.ErrMissingRedirectURLs),
		errors.Is(err, e.ErrCurrencyMismatch),
		errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, e.ErrPaymentDeclined):
		return http.StatusPaymentRequired, providerMessage(err, e.ErrPaymentDeclined)
	case errors.Is(err, e.ErrPaymentActionRequired):
		return http.StatusConflict, providerMessage(err, e.ErrPaymentActionRequired)
	case errors.Is(err, e.ErrProductNotFound),
		errors.Is(err, e.ErrCheckoutNotFound):
		return http.StatusNotFound, rootMessage(err)
	case errors.Is(err, e.ErrIllegalTransition),
		errors.Is(err, e.ErrPaymentNotReady),
		errors.Is(err, e.ErrCheckoutCompleted),
		errors.Is(err, e.ErrStaleResult):
		return http.StatusConflict, rootMessage(err)
	case errors.Is(err, e.ErrPaymentUnavailable),
		errors.Is(err, e.ErrCarrierUnavailable):
		return http.StatusServiceUnavailable, rootMessage(err)
	case errors.Is(err, e.ErrPaymentProvider):
		return http.StatusBadGateway, e.ErrPaymentProvider.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

// rootMessage возвращает текст первой найденной sentinel-ошибки без префиксов op.
// Порядок важен: ошибка количества несёт внутри себя ErrInvalidJSON.
func rootMessage(err error) string {
	for _, s := range []error{
		e.ErrInvalidQuantity, e.ErrStatusBadRequest, e.ErrInvalidJSON, e.ErrMissingSessionID,
		e.ErrInvalidWeight, e.ErrIncompleteAddress, e.ErrNoShippingMethod, e.ErrUnknownShippingMethod,
		e.ErrInvalidCheckoutStep, e.ErrEmptyCart, e.ErrMissingRedirectURLs, e.ErrCurrencyMismatch,
		e.ErrInvalidPrice, e.ErrProductNotFound, e.ErrCheckoutNotFound, e.ErrIllegalTransition,
		e.ErrPaymentNotReady, e.ErrCheckoutCompleted, e.ErrStaleResult, e.ErrPaymentUnavailable,
		e.ErrCarrierUnavailable,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}

	return err.Error()
}

// providerMessage оставляет от цепочки обёрток только "<sentinel>: <сообщение провайдера>".
func providerMessage(err, sentinel error) string {
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if errors.Unwrap(cur) == sentinel {
			return cur.Error()
		}
	}

	return sentinel.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst. Пустое тело допустимо, если allowEmpty.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrInvalidJSON, err))
	}

	return nil
}
