// Package paymentprovider оборачивает Stripe: клиенты, payment intent для мобильного
// payment sheet, проверка сохранённых способов оплаты и разбор webhook-событий.
package paymentprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/ephemeralkey"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/paymentmethod"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/magabrotheeeer/barbershop-manager/internal/config"
)

// ErrInvalidSignature возвращается, если подпись webhook не прошла проверку.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Client клиент Stripe.
type Client struct {
	cfg config.Stripe
}

// NewClient создаёт новый клиент Stripe.
func NewClient(cfg config.Stripe) *Client {
	stripe.Key = cfg.SecretKey
	return &Client{cfg: cfg}
}

// CreateCustomer создаёт клиента Stripe и возвращает его ID.
func (c *Client) CreateCustomer(ctx context.Context, email, userUID string) (string, error) {
	const op = "paymentprovider.CreateCustomer"
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata("user_uid", userUID)
	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return cust.ID, nil
}

// HasPaymentMethod проверяет, привязан ли к клиенту хотя бы один способ оплаты.
func (c *Client) HasPaymentMethod(ctx context.Context, customerID string) (bool, error) {
	const op = "paymentprovider.HasPaymentMethod"
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)
	iter := paymentmethod.List(params)
	if iter.Next() {
		return true, nil
	}
	if err := iter.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return false, nil
}

// CreatePaymentIntent создаёт payment intent с сохранением карты для будущих списаний
// и ephemeral key для payment sheet.
func (c *Client) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	const op = "paymentprovider.CreatePaymentIntent"
	currency := req.Currency
	if currency == "" {
		currency = c.cfg.Currency
	}

	keyParams := &stripe.EphemeralKeyParams{
		Customer:      stripe.String(req.CustomerID),
		StripeVersion: stripe.String(stripe.APIVersion),
	}
	keyParams.Context = ctx
	key, err := ephemeralkey.New(keyParams)
	if err != nil {
		return nil, fmt.Errorf("%s: ephemeral key: %w", op, err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:           stripe.Int64(req.AmountCents),
		Currency:         stripe.String(currency),
		Customer:         stripe.String(req.CustomerID),
		SetupFutureUsage: stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("user_uid", req.UserUID)
	params.AddMetadata("plan_id", req.PlanID)
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Intent{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		EphemeralKey:    key.Secret,
		CustomerID:      req.CustomerID,
		PublishableKey:  c.cfg.PublishableKey,
	}, nil
}

// ParseWebhook проверяет подпись и приводит событие к WebhookEvent.
func (c *Client) ParseWebhook(payload []byte, sigHeader string) (*WebhookEvent, error) {
	const op = "paymentprovider.ParseWebhook"
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, c.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidSignature, err)
	}
	ev, err := classify(event)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ev, nil
}

func classify(event stripe.Event) (*WebhookEvent, error) {
	ev := &WebhookEvent{ID: event.ID, Type: string(event.Type), Kind: EventIgnored}
	if event.Data == nil {
		return ev, nil
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted",
		"customer.subscription.paused", "customer.subscription.resumed":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		ev.Kind = EventSubscriptionChanged
		ev.SubscriptionStatus = string(sub.Status)
		if event.Type == "customer.subscription.deleted" && sub.Status == "" {
			ev.SubscriptionStatus = string(stripe.SubscriptionStatusCanceled)
		}
		if sub.Customer != nil {
			ev.CustomerID = sub.Customer.ID
		}
	case "payment_method.attached":
		var pm stripe.PaymentMethod
		if err := json.Unmarshal(event.Data.Raw, &pm); err != nil {
			return nil, fmt.Errorf("decode payment method: %w", err)
		}
		ev.Kind = EventPaymentMethodAdded
		if pm.Customer != nil {
			ev.CustomerID = pm.Customer.ID
		}
	case "setup_intent.succeeded":
		var si stripe.SetupIntent
		if err := json.Unmarshal(event.Data.Raw, &si); err != nil {
			return nil, fmt.Errorf("decode setup intent: %w", err)
		}
		ev.Kind = EventPaymentMethodAdded
		if si.Customer != nil {
			ev.CustomerID = si.Customer.ID
		}
	case "payment_method.detached":
		var pm stripe.PaymentMethod
		if err := json.Unmarshal(event.Data.Raw, &pm); err != nil {
			return nil, fmt.Errorf("decode payment method: %w", err)
		}
		ev.Kind = EventPaymentMethodRemoved
		// после detach поле customer пустое, клиент берётся из previous_attributes
		var prev struct {
			Customer string `json:"customer"`
		}
		if len(event.Data.PreviousAttributes) > 0 {
			if raw, err := json.Marshal(event.Data.PreviousAttributes); err == nil {
				_ = json.Unmarshal(raw, &prev)
			}
		}
		ev.CustomerID = prev.Customer
	}
	return ev, nil
}
