// Package fakecheckout is an in-process checkout provider for local runs and tests.
// Sessions are never paid by anyone: a test or an operator confirms them by posting a webhook
// signed with the provider's secret.
package fakecheckout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-rentals-go/checkout"
	"github.com/AntonStoeckl/library-rentals-go/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrProviderUnavailable is what a provider switched to failing mode returns.
var ErrProviderUnavailable = errors.New("checkout provider unavailable")

// WebhookPayload is the body of a fake webhook.
type WebhookPayload struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// Provider records the sessions it opens and accepts webhooks signed with its secret.
type Provider struct {
	mu       sync.Mutex
	baseURL  string
	secret   string
	failing  bool
	requests []core.CheckoutRequest
	expired  []string
}

// New creates a new Provider. Session URLs are baseURL followed by the session id.
func New(baseURL string, secret string) *Provider {
	return &Provider{baseURL: baseURL, secret: secret}
}

// CreateSession implements the checkout provider.
func (p *Provider) CreateSession(_ context.Context, request core.CheckoutRequest) (core.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failing {
		return core.CheckoutSession{}, ErrProviderUnavailable
	}

	p.requests = append(p.requests, request)
	id := "cs_fake_" + uuid.NewString()

	return core.CheckoutSession{ID: id, URL: p.baseURL + id}, nil
}

// ExpireSession records sessionID as expired.
func (p *Provider) ExpireSession(_ context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failing {
		return ErrProviderUnavailable
	}

	p.expired = append(p.expired, sessionID)

	return nil
}

// Expired returns the ids of the sessions expired so far.
func (p *Provider) Expired() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.expired...)
}

// SetFailing switches the provider between failing and working.
func (p *Provider) SetFailing(failing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failing = failing
}

// Requests returns the checkout requests received so far.
func (p *Provider) Requests() []core.CheckoutRequest {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]core.CheckoutRequest(nil), p.requests...)
}

// Sign returns the signature header value for payload.
func (p *Provider) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(p.secret))
	mac.Write(payload)

	return hex.EncodeToString(mac.Sum(nil))
}

// SignedWebhook builds a signed webhook body for event.
func (p *Provider) SignedWebhook(event WebhookPayload) (body []byte, signature string, err error) {
	body, err = json.Marshal(event)
	if err != nil {
		return nil, "", err
	}

	return body, p.Sign(body), nil
}

// ParseWebhook verifies the HMAC-SHA256 signature of payload and decodes it.
func (p *Provider) ParseWebhook(payload []byte, signature string) (checkout.Event, error) {
	if !hmac.Equal([]byte(p.Sign(payload)), []byte(signature)) {
		return checkout.Event{}, checkout.ErrInvalidSignature
	}

	var decoded WebhookPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return checkout.Event{}, errors.Join(checkout.ErrMalformedEvent, err)
	}

	return checkout.Event{ID: decoded.ID, Type: decoded.Type, SessionID: decoded.SessionID}, nil
}
