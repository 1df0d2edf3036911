// Package payment converts raw card entry fields into a tokenized,
// non-sensitive payment method handle. Raw card numbers and CVVs live only
// for the duration of the tokenize call and are never logged or persisted.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrRejected means the processor refused the card data. Terminal for
	// the attempt.
	ErrRejected = errors.New("payment method rejected")

	// ErrUnavailable means the processor could not be reached or failed
	// transiently. The caller may resubmit.
	ErrUnavailable = errors.New("payment gateway unavailable")
)

// Card holds raw entry fields. Its String form is redacted so accidental
// formatting can never leak the number or CVV.
type Card struct {
	Number   string
	Holder   string
	ExpMonth int
	ExpYear  int
	CVV      string
}

func (c Card) String() string {
	return fmt.Sprintf("card(****%s, %02d/%d)", c.last4(), c.ExpMonth, c.ExpYear)
}

func (c Card) last4() string {
	digits := strings.ReplaceAll(strings.TrimSpace(c.Number), " ", "")
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func (c Card) validate() error {
	digits := strings.ReplaceAll(strings.TrimSpace(c.Number), " ", "")
	if len(digits) < 12 {
		return fmt.Errorf("%w: card number too short", ErrRejected)
	}
	if c.ExpMonth < 1 || c.ExpMonth > 12 {
		return fmt.Errorf("%w: invalid expiry month", ErrRejected)
	}
	if c.ExpYear < time.Now().Year() {
		return fmt.Errorf("%w: card expired", ErrRejected)
	}
	if len(strings.TrimSpace(c.CVV)) < 3 {
		return fmt.Errorf("%w: invalid cvv", ErrRejected)
	}
	return nil
}

// Token is the non-sensitive handle returned by the processor, safe to
// store and to drive settlement.
type Token struct {
	ID    string
	Brand string
	Last4 string
}

// Gateway is the HTTP client for the card processor's tokenization
// endpoint.
type Gateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
	logger    *log.Entry
}

func NewGateway(baseURL, secretKey string, logger *log.Entry) *Gateway {
	if logger == nil {
		logger = log.New().WithField("component", "payment-gateway")
	}
	return &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

type tokenResponse struct {
	ID   string `json:"id"`
	Card struct {
		Brand string `json:"brand"`
		Last4 string `json:"last4"`
	} `json:"card"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Tokenize exchanges card fields for an opaque token plus brand and last4.
// Client errors from the processor map to ErrRejected, transport and
// server errors to ErrUnavailable.
func (g *Gateway) Tokenize(ctx context.Context, card Card) (Token, error) {
	if err := card.validate(); err != nil {
		return Token{}, err
	}

	form := url.Values{}
	form.Set("type", "card")
	form.Set("card[number]", strings.ReplaceAll(strings.TrimSpace(card.Number), " ", ""))
	form.Set("card[exp_month]", strconv.Itoa(card.ExpMonth))
	form.Set("card[exp_year]", strconv.Itoa(card.ExpYear))
	form.Set("card[cvc]", card.CVV)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/payment_methods", strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	res, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).Warn("tokenize request failed")
		return Token{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	var body tokenResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&body); decodeErr != nil && res.StatusCode < 400 {
		return Token{}, fmt.Errorf("%w: malformed response", ErrUnavailable)
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		if body.ID == "" {
			return Token{}, fmt.Errorf("%w: empty token", ErrUnavailable)
		}
		return Token{ID: body.ID, Brand: body.Card.Brand, Last4: body.Card.Last4}, nil
	case res.StatusCode >= 400 && res.StatusCode < 500:
		g.logger.WithField("status", res.StatusCode).Info("card rejected by processor")
		return Token{}, fmt.Errorf("%w: %s", ErrRejected, body.Error.Message)
	default:
		g.logger.WithField("status", res.StatusCode).Warn("processor error")
		return Token{}, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}
}
