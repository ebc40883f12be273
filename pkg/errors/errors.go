// asaas-gateway/pkg/errors/errors.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Reason codes shared by the HTTP layer.
const (
	CodeBadJSON        = "bad_json"
	CodeMissingEvent   = "missing_event"
	CodeMissingPayment = "missing_payment"
	CodeInvalidToken   = "invalid_webhook_token"
	CodeUnauthorized   = "unauthorized"
	CodeInvalidInput   = "invalid_input"
	CodeUpstream       = "upstream_error"
	CodeNotConfigured  = "not_configured"
	CodeCustomerNeeded = "customer_required"
	CodeInternal       = "internal"
)

type E struct {
	Code    string
	Message string
	Status  int
	Err     error
	// Details carries the raw upstream payload for gateway errors.
	Details json.RawMessage
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func New(code string, status int, msg string) error {
	return &E{Code: code, Message: msg, Status: status}
}

func Wrap(code, msg string, err error) error {
	return &E{Code: code, Message: msg, Status: http.StatusInternalServerError, Err: err}
}

// Upstream builds the error returned when the payment gateway answers non-2xx.
func Upstream(status int, details []byte) error {
	if len(details) == 0 || !json.Valid(details) {
		details = []byte("{}")
	}
	return &E{Code: CodeUpstream, Message: "Asaas error", Status: status, Details: details}
}

func As(err error) (*E, bool) {
	var e *E
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf maps err to an HTTP status, 500 for anything uncoded.
func StatusOf(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}
