package payment

// checkoutSessionResponse — ответ на создание платёжной сессии.
type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type paymentIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	NextAction   *struct {
		Type          string `json:"type"`
		RedirectToURL struct {
			URL string `json:"url"`
		} `json:"redirect_to_url"`
	} `json:"next_action"`
}

// errorResponse — тело ошибки провайдера.
type errorResponse struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"error"`
}

// Статусы намерения после подтверждения.
const (
	// оплачено или деньги уже в пути
	statusSucceeded       = "succeeded"
	statusProcessing      = "processing"
	statusRequiresCapture = "requires_capture"

	// нужен шаг покупателя
	statusRequiresAction       = "requires_action"
	statusRequiresConfirmation = "requires_confirmation"

	// отказ
	statusRequiresPaymentMethod = "requires_payment_method"
	statusCanceled              = "canceled"
)

const (
	errTypeCard         = "card_error"
	codeUnexpectedState = "payment_intent_unexpected_state"
)
