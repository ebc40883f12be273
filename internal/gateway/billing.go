package gateway

import (
	"strings"
	"time"
)

const (
	BillingBoleto     = "BOLETO"
	BillingCreditCard = "CREDIT_CARD"
	BillingDebitCard  = "DEBIT_CARD"
	BillingPix        = "PIX"
)

var billingTypes = map[string]string{
	"credit_card": BillingCreditCard,
	"debit_card":  BillingDebitCard,
	"pix":         BillingPix,
	"boleto":      BillingBoleto,
}

// BillingType maps an application payment method to the gateway's billing type.
// Unknown or empty methods fall back to BOLETO.
func BillingType(method string) string {
	if bt, ok := billingTypes[strings.ToLower(strings.TrimSpace(method))]; ok {
		return bt
	}
	return BillingBoleto
}

// DefaultDueDate is three days after now, as a UTC calendar date.
func DefaultDueDate(now time.Time) string {
	return now.UTC().Add(72 * time.Hour).Format(time.DateOnly)
}
