package stripecheckout_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/AntonStoeckl/library-rentals-go/checkout"
	"github.com/AntonStoeckl/library-rentals-go/checkout/stripecheckout"
	"github.com/AntonStoeckl/library-rentals-go/core"
)

const webhookSecret = "whsec_test"

func newProvider(t *testing.T, backendURL string) *stripecheckout.Provider {
	t.Helper()

	var options []stripecheckout.Option
	if backendURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(backendURL),
			MaxNetworkRetries: stripe.Int64(0),
		})
		options = append(options, stripecheckout.WithBackend(backend))
	}

	provider, err := stripecheckout.New(stripecheckout.Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: webhookSecret,
		SuccessURL:    "https://library.example/paid",
		CancelURL:     "https://library.example/canceled",
	}, options...)
	require.NoError(t, err)

	return provider
}

func signed(t *testing.T, payload string) (body []byte, header string) {
	t.Helper()

	signedPayload := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})

	return signedPayload.Payload, signedPayload.Header
}

func Test_New_RequiresSecrets(t *testing.T) {
	_, err := stripecheckout.New(stripecheckout.Config{WebhookSecret: "whsec"})
	assert.ErrorIs(t, err, stripecheckout.ErrMissingSecretKey)

	_, err = stripecheckout.New(stripecheckout.Config{SecretKey: "sk"})
	assert.ErrorIs(t, err, stripecheckout.ErrMissingWebhookSecret)
}

func Test_Provider_CreateSession(t *testing.T) {
	// arrange
	var form url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	}))
	defer server.Close()

	provider := newProvider(t, server.URL)

	// act
	session, err := provider.CreateSession(context.Background(), core.CheckoutRequest{
		Reference:   "borrowing-1",
		Amount:      decimal.RequireFromString("12.50"),
		Description: "Rental fee",
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, session)
	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, "borrowing-1", form.Get("client_reference_id"))
	assert.Equal(t, "1250", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "usd", form.Get("line_items[0][price_data][currency]"))
}

func Test_Provider_CreateSession_ProviderError(t *testing.T) {
	// arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad amount"}}`))
	}))
	defer server.Close()

	provider := newProvider(t, server.URL)

	// act
	_, err := provider.CreateSession(context.Background(), core.CheckoutRequest{Amount: decimal.NewFromInt(1)})

	// assert
	assert.Error(t, err)
}

func Test_Provider_ExpireSession(t *testing.T) {
	// arrange
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","status":"expired"}`))
	}))
	defer server.Close()

	provider := newProvider(t, server.URL)

	// act
	err := provider.ExpireSession(context.Background(), "cs_test_1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "/v1/checkout/sessions/cs_test_1/expire", path)
}

func Test_Provider_ParseWebhook_SessionCompleted(t *testing.T) {
	// arrange
	provider := newProvider(t, "")
	body, header := signed(t, `{"id":"evt_1","object":"event","type":"checkout.session.completed",`+
		`"data":{"object":{"id":"cs_test_1","object":"checkout.session"}}}`)

	// act
	event, err := provider.ParseWebhook(body, header)

	// assert
	require.NoError(t, err)
	assert.Equal(t, checkout.Event{ID: "evt_1", Type: checkout.EventSessionCompleted, SessionID: "cs_test_1"}, event)
	assert.True(t, event.CompletesPayment())
}

func Test_Provider_ParseWebhook_OtherEventIsNotAPaymentCompletion(t *testing.T) {
	// arrange
	provider := newProvider(t, "")
	body, header := signed(t, `{"id":"evt_2","object":"event","type":"checkout.session.expired",`+
		`"data":{"object":{"id":"cs_test_1","object":"checkout.session"}}}`)

	// act
	event, err := provider.ParseWebhook(body, header)

	// assert
	require.NoError(t, err)
	assert.False(t, event.CompletesPayment())
	assert.Empty(t, event.SessionID)
}

func Test_Provider_ParseWebhook_BadSignature(t *testing.T) {
	// arrange
	provider := newProvider(t, "")
	body, _ := signed(t, `{"id":"evt_3","object":"event","type":"checkout.session.completed"}`)

	// act
	_, err := provider.ParseWebhook(body, "t=1,v1=deadbeef")

	// assert
	assert.ErrorIs(t, err, checkout.ErrInvalidSignature)
}
