package paymentprovider

// EventKind классифицирует webhook-события, которые меняют профиль пользователя.
type EventKind string

// Поддерживаемые виды событий. Остальные события приходят как EventIgnored.
const (
	EventIgnored              EventKind = "ignored"
	EventSubscriptionChanged  EventKind = "subscription_changed"
	EventPaymentMethodAdded   EventKind = "payment_method_added"
	EventPaymentMethodRemoved EventKind = "payment_method_removed"
)

// Intent данные, необходимые мобильному клиенту для показа payment sheet.
type Intent struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	EphemeralKey    string `json:"ephemeral_key"`
	CustomerID      string `json:"customer_id"`
	PublishableKey  string `json:"publishable_key,omitempty"`
}

// IntentRequest параметры создания платежа.
type IntentRequest struct {
	CustomerID  string
	AmountCents int64
	Currency    string
	UserUID     string
	PlanID      string
}

// WebhookEvent проверенное и разобранное событие Stripe.
type WebhookEvent struct {
	ID                 string
	Type               string
	Kind               EventKind
	CustomerID         string
	SubscriptionStatus string
}
