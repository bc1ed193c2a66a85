// Package mercadopago is a small REST client for the pieces of the MercadoPago
// API this site uses: payment lookup, payment search, and checkout preferences.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.mercadopago.com"

var ErrNotFound = errors.New("mercadopago: payment not found")

type Client struct {
	accessToken string
	baseURL     string
	http        *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(accessToken string, opts ...Option) *Client {
	c := &Client{
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// IsTestToken: TEST- credentials get the sandbox checkout URL.
func (c *Client) IsTestToken() bool { return strings.HasPrefix(c.accessToken, "TEST-") }

type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail,omitempty"`
	ExternalReference string  `json:"external_reference,omitempty"`
	TransactionAmount float64 `json:"transaction_amount,omitempty"`
	DateCreated       string  `json:"date_created,omitempty"`
}

type searchResponse struct {
	Results []Payment `json:"results"`
}

// GetPayment fetches a payment by the gateway's own id.
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchPayments looks up payments by external_reference, most recent first.
func (c *Client) SearchPayments(ctx context.Context, externalReference string) ([]Payment, error) {
	q := url.Values{}
	q.Set("external_reference", externalReference)
	q.Set("limit", "1")
	q.Set("sort", "date_created")
	q.Set("criteria", "desc")

	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/search?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

type PreferenceItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	CurrencyID  string  `json:"currency_id"`
	UnitPrice   float64 `json:"unit_price"`
}

type Payer struct {
	Email string `json:"email"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type ExcludedPaymentType struct {
	ID string `json:"id"`
}

type PaymentMethods struct {
	ExcludedPaymentTypes []ExcludedPaymentType `json:"excluded_payment_types,omitempty"`
	Installments         int                   `json:"installments,omitempty"`
}

type PreferenceRequest struct {
	Items               []PreferenceItem `json:"items"`
	Payer               Payer            `json:"payer"`
	BackURLs            BackURLs         `json:"back_urls"`
	AutoReturn          string           `json:"auto_return,omitempty"`
	ExternalReference   string           `json:"external_reference"`
	StatementDescriptor string           `json:"statement_descriptor,omitempty"`
	PaymentMethods      PaymentMethods   `json:"payment_methods"`
	BinaryMode          bool             `json:"binary_mode,omitempty"`
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
}

// CreatePreference creates a checkout preference and returns its init points.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	var pref Preference
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", req, &pref); err != nil {
		return nil, err
	}
	return &pref, nil
}

// CheckoutURL picks the sandbox link for test credentials when available.
func (c *Client) CheckoutURL(p *Preference) string {
	if c.IsTestToken() && p.SandboxInitPoint != "" {
		return p.SandboxInitPoint
	}
	return p.InitPoint
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mercadopago: %s %s: status %d: %s", method, path, resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
