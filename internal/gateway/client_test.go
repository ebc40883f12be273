package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/example/asaas-gateway/pkg/errors"
)

type captured struct {
	method, path string
	header       http.Header
	body         map[string]any
}

func fakeAsaas(t *testing.T, status int, reply string, got *captured) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/v3/", APIKey: "key_123", UserAgent: "test-agent/1.0"}, srv.Client())
}

func TestBillingType(t *testing.T) {
	cases := map[string]string{
		"credit_card": "CREDIT_CARD",
		"debit_card":  "DEBIT_CARD",
		"pix":         "PIX",
		"boleto":      "BOLETO",
		" PIX ":       "PIX",
		"":            "BOLETO",
		"cash":        "BOLETO",
	}
	for in, want := range cases {
		assert.Equal(t, want, BillingType(in), "method %q", in)
	}
}

func TestDefaultDueDate(t *testing.T) {
	now := time.Date(2026, 2, 27, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-02", DefaultDueDate(now))
}

func TestCreateCustomer(t *testing.T) {
	var got captured
	c := fakeAsaas(t, http.StatusOK, `{"object":"customer","id":"cus_000005"}`, &got)

	id, err := c.CreateCustomer(context.Background(), CustomerInput{Name: "Maria", Email: "m@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "cus_000005", id)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/v3/customers", got.path)
	assert.Equal(t, "key_123", got.header.Get("access_token"))
	assert.Equal(t, "test-agent/1.0", got.header.Get("User-Agent"))
	assert.Equal(t, "Maria", got.body["name"])
	assert.Equal(t, "m@example.com", got.body["email"])
	assert.Contains(t, got.body, "cpfCnpj")
	assert.Nil(t, got.body["cpfCnpj"])
}

func TestCreateCustomer_IDUnderObject(t *testing.T) {
	var got captured
	c := fakeAsaas(t, http.StatusOK, `{"object":{"id":"cus_nested"}}`, &got)

	id, err := c.CreateCustomer(context.Background(), CustomerInput{Name: "Maria"})
	require.NoError(t, err)
	assert.Equal(t, "cus_nested", id)
}

func TestCreateCustomer_MissingID(t *testing.T) {
	var got captured
	c := fakeAsaas(t, http.StatusOK, `{"deleted":false}`, &got)

	_, err := c.CreateCustomer(context.Background(), CustomerInput{Name: "Maria"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperr.StatusOf(err))
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.JSONEq(t, `{"deleted":false}`, string(e.Details))
}

func TestCreateCharge(t *testing.T) {
	var got captured
	reply := `{"object":"payment","id":"pay_1","status":"PENDING","invoiceUrl":"https://i/1","bankSlipUrl":"https://b/1","value":149.9}`
	c := fakeAsaas(t, http.StatusOK, reply, &got)

	ch, err := c.CreateCharge(context.Background(), ChargeInput{
		Customer:    "cus_1",
		BillingType: BillingPix,
		Value:       decimal.RequireFromString("149.90"),
		DueDate:     "2026-10-18",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_1", ch.ID)
	assert.Equal(t, "PENDING", ch.Status)
	assert.Equal(t, "https://i/1", ch.InvoiceURL)
	assert.Equal(t, "https://b/1", ch.BankSlipURL)
	assert.Equal(t, "payment", ch.Raw["object"])

	assert.Equal(t, "/v3/lean/payments", got.path)
	assert.Equal(t, "cus_1", got.body["customer"])
	assert.Equal(t, "PIX", got.body["billingType"])
	assert.Equal(t, 149.9, got.body["value"])
	assert.Equal(t, "2026-10-18", got.body["dueDate"])
	assert.NotContains(t, got.body, "description")
}

func TestCreateCharge_UpstreamError(t *testing.T) {
	var got captured
	reply := `{"errors":[{"code":"invalid_customer","description":"Customer not found"}]}`
	c := fakeAsaas(t, http.StatusBadRequest, reply, &got)

	_, err := c.CreateCharge(context.Background(), ChargeInput{Customer: "cus_x", BillingType: BillingBoleto, Value: decimal.NewFromInt(5), DueDate: "2026-10-18"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
	assert.Equal(t, apperr.CodeUpstream, apperr.CodeOf(err))
	e, _ := apperr.As(err)
	assert.JSONEq(t, reply, string(e.Details))
}

func TestCreateCharge_NonJSONError(t *testing.T) {
	var got captured
	c := fakeAsaas(t, http.StatusBadGateway, `<html>bad gateway</html>`, &got)

	_, err := c.CreateCharge(context.Background(), ChargeInput{Customer: "cus_x", Value: decimal.NewFromInt(5)})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, e.Status)
	assert.JSONEq(t, `{}`, string(e.Details))
}

func TestConfigured(t *testing.T) {
	assert.False(t, New(Config{}, nil).Configured())
	assert.True(t, New(Config{APIKey: "k"}, nil).Configured())
}
