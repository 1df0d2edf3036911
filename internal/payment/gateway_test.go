package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() Card {
	return Card{Number: "4242 4242 4242 4242", Holder: "J Tester", ExpMonth: 11, ExpYear: 2033, CVV: "123"}
}

func TestTokenizeSuccess(t *testing.T) {
	var gotAuth, gotNumber string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_methods", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotAuth = r.Header.Get("Authorization")
		gotNumber = r.PostForm.Get("card[number]")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pm_abc","card":{"brand":"visa","last4":"4242"}}`))
	}))
	defer server.Close()

	gateway := NewGateway(server.URL, "sk_test_123", nil)
	token, err := gateway.Tokenize(context.Background(), validCard())
	require.NoError(t, err)

	assert.Equal(t, Token{ID: "pm_abc", Brand: "visa", Last4: "4242"}, token)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "4242424242424242", gotNumber, "spaces stripped before sending")
}

func TestTokenizeRejectedOnClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"card declined"}}`))
	}))
	defer server.Close()

	gateway := NewGateway(server.URL, "sk", nil)
	_, err := gateway.Tokenize(context.Background(), validCard())

	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "card declined")
}

func TestTokenizeUnavailableOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gateway := NewGateway(server.URL, "sk", nil)
	_, err := gateway.Tokenize(context.Background(), validCard())

	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTokenizeUnavailableWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	gateway := NewGateway(server.URL, "sk", nil)
	_, err := gateway.Tokenize(context.Background(), validCard())

	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTokenizeHonorsContextDeadline(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	gateway := NewGateway(server.URL, "sk", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := gateway.Tokenize(ctx, validCard())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTokenizeValidatesLocallyBeforeCalling(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer server.Close()

	gateway := NewGateway(server.URL, "sk", nil)

	tests := []struct {
		name string
		card Card
	}{
		{"short number", Card{Number: "1234", ExpMonth: 1, ExpYear: 2033, CVV: "123"}},
		{"bad month", Card{Number: "4242424242424242", ExpMonth: 13, ExpYear: 2033, CVV: "123"}},
		{"expired year", Card{Number: "4242424242424242", ExpMonth: 1, ExpYear: 2001, CVV: "123"}},
		{"short cvv", Card{Number: "4242424242424242", ExpMonth: 1, ExpYear: 2033, CVV: "1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gateway.Tokenize(context.Background(), tc.card)
			require.ErrorIs(t, err, ErrRejected)
		})
	}
	assert.False(t, called, "invalid cards must not reach the processor")
}

func TestCardStringIsRedacted(t *testing.T) {
	card := validCard()
	redacted := card.String()

	assert.NotContains(t, redacted, "4242 4242")
	assert.NotContains(t, redacted, card.CVV+")")
	assert.Contains(t, redacted, "****4242")
}

func TestNewPixChargeRecordsKeyAndAmount(t *testing.T) {
	charge := NewPixCharge("pix@store.example", 45.50)

	assert.Equal(t, "pix@store.example", charge.Key)
	assert.Equal(t, 45.50, charge.Amount)
	assert.NotEmpty(t, charge.Reference)

	other := NewPixCharge("pix@store.example", 45.50)
	assert.NotEqual(t, charge.Reference, other.Reference)
}
