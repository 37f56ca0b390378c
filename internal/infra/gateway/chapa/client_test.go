package chapa_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/policies"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/gateway/chapa"
)

func checkoutParams() policies.CheckoutParams {
	return policies.CheckoutParams{
		Amount:    money.Must(20000, "ETB"),
		Email:     "guest@example.com",
		FirstName: "Abebe",
		LastName:  "Bikila",
		TxRef:     "ref-123",
	}
}

func TestInitializeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "200.00", body["amount"])
		assert.Equal(t, "ETB", body["currency"])
		assert.Equal(t, "ref-123", body["tx_ref"])

		json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Hosted Link",
			"data":    map[string]any{"checkout_url": "https://checkout.chapa.co/pay/xyz"},
		})
	}))
	defer srv.Close()

	client := chapa.NewClient(srv.URL, "sk-test", time.Second)
	checkout, err := client.Initialize(context.Background(), checkoutParams())
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.chapa.co/pay/xyz", checkout.CheckoutURL)
	assert.Equal(t, "ref-123", checkout.TxRef)
}

func TestInitializeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"status": "failed", "message": "invalid currency"})
	}))
	defer srv.Close()

	client := chapa.NewClient(srv.URL, "sk-test", time.Second)
	_, err := client.Initialize(context.Background(), checkoutParams())
	assert.ErrorIs(t, err, policies.ErrGatewayRejected)
}

func TestInitializeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := chapa.NewClient(srv.URL, "sk-test", time.Second)
	_, err := client.Initialize(context.Background(), checkoutParams())
	assert.ErrorIs(t, err, policies.ErrGatewayUnavailable)
}

func TestInitializeConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := chapa.NewClient(srv.URL, "sk-test", time.Second)
	_, err := client.Initialize(context.Background(), checkoutParams())
	assert.ErrorIs(t, err, policies.ErrGatewayUnavailable)
}

func TestVerifyOutcomes(t *testing.T) {
	cases := []struct {
		name      string
		envelope  map[string]any
		succeeded bool
	}{
		{
			name: "success",
			envelope: map[string]any{
				"status": "success",
				"data":   map[string]any{"status": "success", "tx_ref": "ref-123"},
			},
			succeeded: true,
		},
		{
			name: "payment still pending",
			envelope: map[string]any{
				"status": "success",
				"data":   map[string]any{"status": "pending", "tx_ref": "ref-123"},
			},
			succeeded: false,
		},
		{
			name:      "lookup failed",
			envelope:  map[string]any{"status": "failed", "message": "invalid reference"},
			succeeded: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/transaction/verify/ref-123", r.URL.Path)
				json.NewEncoder(w).Encode(tc.envelope)
			}))
			defer srv.Close()

			client := chapa.NewClient(srv.URL, "sk-test", time.Second)
			result, err := client.Verify(context.Background(), "ref-123")
			require.NoError(t, err)
			assert.Equal(t, tc.succeeded, result.Succeeded)
		})
	}
}
