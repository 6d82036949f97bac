package domain

import "time"

// CheckoutStep — шаг оформления заказа.
type CheckoutStep string

const (
	StepShipping       CheckoutStep = "shipping"
	StepShippingMethod CheckoutStep = "shipping-method"
	StepPayment        CheckoutStep = "payment"
	StepCompleted      CheckoutStep = "completed"
)

var stepOrder = map[CheckoutStep]int{
	StepShipping:       0,
	StepShippingMethod: 1,
	StepPayment:        2,
	StepCompleted:      3,
}

func (s CheckoutStep) IsValid() bool {
	_, ok := stepOrder[s]
	return ok
}

func (s CheckoutStep) IsTerminal() bool {
	return s == StepCompleted
}

func (s CheckoutStep) String() string {
	return string(s)
}

// CanAdvanceTo разрешает только переход на следующий шаг, без перескоков.
func (s CheckoutStep) CanAdvanceTo(next CheckoutStep) bool {
	from, ok := stepOrder[s]
	if !ok {
		return false
	}
	to, ok := stepOrder[next]
	if !ok {
		return false
	}

	return to == from+1
}

// CanGoBackTo разрешает возврат на любой предыдущий шаг, кроме как из завершённого оформления.
func (s CheckoutStep) CanGoBackTo(prev CheckoutStep) bool {
	if s.IsTerminal() {
		return false
	}
	from, ok := stepOrder[s]
	if !ok {
		return false
	}
	to, ok := stepOrder[prev]
	if !ok {
		return false
	}

	return to < from
}

// PaymentStatus — состояние инициализации платежа (payment intent).
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentReady   PaymentStatus = "ready"
	PaymentFailed  PaymentStatus = "failed"
)

// PaymentState — результат однократной инициализации платежа.
type PaymentState struct {
	Status       PaymentStatus `json:"status"`
	IntentID     string        `json:"-"`
	ClientSecret string        `json:"clientSecret,omitempty"`
	AmountMinor  int64         `json:"amount"`
	Currency     string        `json:"currency"`
	Error        string        `json:"error,omitempty"`
}

// CheckoutSession — состояние одного оформления заказа.
type CheckoutSession struct {
	ID              string           `json:"id"`
	CartSessionID   string           `json:"-"`
	Step            CheckoutStep     `json:"step"`
	ShippingAddress *Address         `json:"shippingAddress,omitempty"`
	ShippingMethods []ShippingMethod `json:"shippingMethods"`
	Payment         PaymentState     `json:"payment"`
	Epoch           uint64           `json:"-"`
	OrderID         string           `json:"orderId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// OffersMethod проверяет, что способ доставки был предложен в этом оформлении.
func (s *CheckoutSession) OffersMethod(id int64) (ShippingMethod, bool) {
	for _, m := range s.ShippingMethods {
		if m.ID == id {
			return m, true
		}
	}

	return ShippingMethod{}, false
}

// Snapshot возвращает копию сессии, безопасную для передачи за пределы блокировки.
func (s *CheckoutSession) Snapshot() CheckoutSession {
	c := *s
	if s.ShippingAddress != nil {
		addr := *s.ShippingAddress
		c.ShippingAddress = &addr
	}
	c.ShippingMethods = append([]ShippingMethod(nil), s.ShippingMethods...)

	return c
}
