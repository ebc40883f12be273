// services/api-gateway/handlers/types.go
package handlers

import "encoding/json"

type ErrorOut struct {
	Error   string          `json:"error"`
	Reason  string          `json:"reason,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

type CustomerOut struct {
	AsaasCustomerID string `json:"asaas_customer_id"`
}

type HealthOut struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	TS      string `json:"ts"`
}
