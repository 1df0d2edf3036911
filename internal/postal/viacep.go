// Package postal resolves Brazilian postal codes to partial addresses via
// ViaCEP. The storefront UI uses it to prefill delivery forms; the
// checkout workflow never calls it.
package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrInvalidCEP means the code is not eight digits.
	ErrInvalidCEP = errors.New("invalid postal code")

	// ErrCEPNotFound means the service has no address for the code.
	ErrCEPNotFound = errors.New("postal code not found")
)

// Address is the partial address a postal code resolves to.
type Address struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Client is a thin ViaCEP HTTP client.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type viaCEPResponse struct {
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// Lookup resolves a CEP, accepting it with or without the dash.
func (c *Client) Lookup(ctx context.Context, cep string) (Address, error) {
	digits := onlyDigits(cep)
	if len(digits) != 8 {
		return Address{}, ErrInvalidCEP
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Address{}, fmt.Errorf("postal lookup: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("postal lookup: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("postal lookup: status %d", res.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Address{}, fmt.Errorf("postal lookup: %w", err)
	}
	if body.Erro {
		return Address{}, ErrCEPNotFound
	}

	return Address{
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}, nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
