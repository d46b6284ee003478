// Package stripecheckout implements the checkout provider on Stripe Checkout.
package stripecheckout

import (
	"context"
	"errors"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/AntonStoeckl/library-rentals-go/checkout"
	"github.com/AntonStoeckl/library-rentals-go/core"
)

const defaultCurrency = "usd"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrMissingSecretKey is returned when the provider is constructed without an API key.
	ErrMissingSecretKey = errors.New("stripe secret key must not be empty")

	// ErrMissingWebhookSecret is returned when the provider is constructed without a webhook signing secret.
	ErrMissingWebhookSecret = errors.New("stripe webhook secret must not be empty")
)

// Config configures the Stripe provider.
type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// Provider opens Stripe Checkout sessions and verifies Stripe webhooks.
type Provider struct {
	sessions      session.Client
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
}

// Option configures a Provider.
type Option func(*Provider)

// WithBackend replaces the Stripe API backend, e.g. to point the client at a test server.
func WithBackend(backend stripe.Backend) Option {
	return func(p *Provider) {
		p.sessions.B = backend
	}
}

// New creates a new Provider.
func New(config Config, options ...Option) (*Provider, error) {
	if config.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}

	if config.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	currency := config.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	provider := &Provider{
		sessions: session.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: config.SecretKey,
		},
		webhookSecret: config.WebhookSecret,
		currency:      currency,
		successURL:    config.SuccessURL,
		cancelURL:     config.CancelURL,
	}

	for _, option := range options {
		option(provider)
	}

	return provider, nil
}

// CreateSession opens a one-item payment session for the request's amount.
func (p *Provider) CreateSession(ctx context.Context, request core.CheckoutRequest) (core.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(request.Reference),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.currency),
					UnitAmount: stripe.Int64(minorUnits(request.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(request.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	s, err := p.sessions.New(params)
	if err != nil {
		return core.CheckoutSession{}, err
	}

	return core.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ExpireSession closes an open session so it can no longer be paid.
func (p *Provider) ExpireSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx

	_, err := p.sessions.Expire(sessionID, params)

	return err
}

// ParseWebhook verifies the Stripe-Signature header and extracts the checkout session the event is about.
func (p *Provider) ParseWebhook(payload []byte, signature string) (checkout.Event, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return checkout.Event{}, errors.Join(checkout.ErrInvalidSignature, err)
	}

	parsed := checkout.Event{ID: event.ID, Type: string(event.Type)}

	if !parsed.CompletesPayment() {
		return parsed, nil
	}

	var s stripe.CheckoutSession
	if event.Data == nil {
		return checkout.Event{}, checkout.ErrMalformedEvent
	}

	if err = json.Unmarshal(event.Data.Raw, &s); err != nil || s.ID == "" {
		return checkout.Event{}, errors.Join(checkout.ErrMalformedEvent, err)
	}

	parsed.SessionID = s.ID

	return parsed, nil
}

// minorUnits converts an amount to the currency's smallest unit, i.e. cents.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
