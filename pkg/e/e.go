package e

import "fmt"

var (
	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 400 Bad Request
	ErrStatusBadRequest       = fmt.Errorf("bad request")
	ErrInvalidJSON            = fmt.Errorf("invalid JSON body")
	ErrMissingSessionID       = fmt.Errorf("session id is required")
	ErrInvalidQuantity        = fmt.Errorf("quantity must be an integer")
	ErrInvalidWeight          = fmt.Errorf("weight must be positive")
	ErrIncompleteAddress      = fmt.Errorf("shipping address is incomplete")
	ErrNoShippingMethod       = fmt.Errorf("no shipping method selected")
	ErrUnknownShippingMethod  = fmt.Errorf("shipping method is not offered for this checkout")
	ErrInvalidCheckoutStep    = fmt.Errorf("invalid checkout step")
	ErrEmptyCart              = fmt.Errorf("cart is empty")
	ErrMissingRedirectURLs    = fmt.Errorf("success and cancel urls are required")
	ErrCurrencyMismatch       = fmt.Errorf("cart items have different currencies")
	ErrInvalidPrice           = fmt.Errorf("invalid price")

	// 402 Payment Required
	ErrPaymentDeclined = fmt.Errorf("payment declined")

	// 404 Not Found
	ErrProductNotFound  = fmt.Errorf("product not found")
	ErrCheckoutNotFound = fmt.Errorf("checkout session not found")

	// 409 Conflict
	ErrIllegalTransition = fmt.Errorf("illegal checkout transition")
	ErrPaymentNotReady   = fmt.Errorf("payment is not ready yet")
	ErrCheckoutCompleted = fmt.Errorf("checkout already completed")
	ErrStaleResult       = fmt.Errorf("result belongs to a previous checkout step")
	// платёж ждёт действия покупателя (3-D Secure, редирект банка)
	ErrPaymentActionRequired = fmt.Errorf("payment requires customer action")

	// 502 / 503
	ErrPaymentProvider    = fmt.Errorf("payment provider error")
	ErrPaymentUnavailable = fmt.Errorf("payment provider is not configured")
	ErrCarrierUnavailable = fmt.Errorf("carrier api unavailable")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
