// Package gateway is a thin client for the Asaas v3 REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	apperr "github.com/example/asaas-gateway/pkg/errors"
)

const DefaultBaseURL = "https://api-sandbox.asaas.com/v3"

type Config struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
}

type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	hc        *http.Client
}

// New builds a client; hc may be nil, in which case one is created with cfg.Timeout.
func New(cfg Config, hc *http.Client) *Client {
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{baseURL: base, apiKey: cfg.APIKey, userAgent: cfg.UserAgent, hc: hc}
}

// Configured reports whether an API key is present. Calls without one fail upstream.
func (c *Client) Configured() bool { return c.apiKey != "" }

type CustomerInput struct {
	Name        string
	CpfCnpj     string
	Email       string
	MobilePhone string
}

type customerBody struct {
	Name        string  `json:"name"`
	CpfCnpj     *string `json:"cpfCnpj"`
	Email       *string `json:"email"`
	MobilePhone *string `json:"mobilePhone"`
}

// CreateCustomer registers a customer and returns its gateway id.
func (c *Client) CreateCustomer(ctx context.Context, in CustomerInput) (string, error) {
	body := customerBody{
		Name:        in.Name,
		CpfCnpj:     lo.EmptyableToPtr(in.CpfCnpj),
		Email:       lo.EmptyableToPtr(in.Email),
		MobilePhone: lo.EmptyableToPtr(in.MobilePhone),
	}
	raw, err := c.post(ctx, "/customers", body)
	if err != nil {
		return "", err
	}
	f := parseFields(raw)
	if f.ID == "" {
		return "", &apperr.E{
			Code:    apperr.CodeUpstream,
			Message: "Asaas did not return customer id",
			Status:  http.StatusInternalServerError,
			Details: detailsOf(raw),
		}
	}
	return f.ID, nil
}

type ChargeInput struct {
	Customer    string
	BillingType string
	Value       decimal.Decimal
	DueDate     string
	Description string
}

type chargeBody struct {
	Customer    string      `json:"customer"`
	BillingType string      `json:"billingType"`
	Value       json.Number `json:"value"`
	DueDate     string      `json:"dueDate"`
	Description string      `json:"description,omitempty"`
}

// Charge is what the gateway reported for a newly created payment. Raw keeps the
// full decoded body so callers can pass it through.
type Charge struct {
	ID          string
	Status      string
	InvoiceURL  string
	BankSlipURL string
	Raw         map[string]any
}

// CreateCharge posts to the lean payments endpoint.
func (c *Client) CreateCharge(ctx context.Context, in ChargeInput) (*Charge, error) {
	body := chargeBody{
		Customer:    in.Customer,
		BillingType: in.BillingType,
		Value:       json.Number(in.Value.String()),
		DueDate:     in.DueDate,
		Description: in.Description,
	}
	raw, err := c.post(ctx, "/lean/payments", body)
	if err != nil {
		return nil, err
	}
	f := parseFields(raw)

	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return &Charge{
		ID:          f.ID,
		Status:      f.Status,
		InvoiceURL:  f.InvoiceURL,
		BankSlipURL: f.BankSlipURL,
		Raw:         out,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUpstream, "asaas request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUpstream, "read asaas response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Upstream(resp.StatusCode, raw)
	}
	return raw, nil
}

type fields struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	InvoiceURL  string `json:"invoiceUrl"`
	BankSlipURL string `json:"bankSlipUrl"`
}

// envelope tolerates "object" being either a type tag string or a wrapped entity.
type envelope struct {
	fields
	Object json.RawMessage `json:"object"`
}

// parseFields reads from the top level first, then from an embedded "object".
func parseFields(raw []byte) fields {
	var f envelope
	if err := json.Unmarshal(raw, &f); err != nil {
		return fields{}
	}
	var o fields
	if strings.HasPrefix(strings.TrimSpace(string(f.Object)), "{") {
		_ = json.Unmarshal(f.Object, &o)
	}
	return fields{
		ID:          lo.CoalesceOrEmpty(f.ID, o.ID),
		Status:      lo.CoalesceOrEmpty(f.Status, o.Status),
		InvoiceURL:  lo.CoalesceOrEmpty(f.InvoiceURL, o.InvoiceURL),
		BankSlipURL: lo.CoalesceOrEmpty(f.BankSlipURL, o.BankSlipURL),
	}
}

func detailsOf(raw []byte) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("{}")
	}
	return raw
}
