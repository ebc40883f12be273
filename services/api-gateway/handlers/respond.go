package handlers

import (
	"encoding/json"
	"net/http"

	apperr "github.com/example/asaas-gateway/pkg/errors"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders a coded error. Uncoded errors become a bare 500 so internals
// never leak to the caller.
func writeError(w http.ResponseWriter, err error) {
	e, ok := apperr.As(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorOut{Error: "internal error", Reason: apperr.CodeInternal})
		return
	}
	msg := e.Message
	if e.Status >= 500 && e.Code == apperr.CodeInternal {
		msg = "internal error"
	}
	writeJSON(w, apperr.StatusOf(err), ErrorOut{Error: msg, Reason: e.Code, Details: e.Details})
}

// MethodNotAllowed is installed as the router's 405 handler.
func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorOut{Error: "Method not allowed"})
	})
}

func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorOut{Error: "Not found"})
	})
}
