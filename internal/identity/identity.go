// Package identity resolves a bearer token to the calling user through the
// auth service.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrUnauthorized = errors.New("identity: unauthorized")

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Verifier struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewVerifier(baseURL, apiKey string, hc *http.Client) *Verifier {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Verifier{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, hc: hc}
}

// BearerToken extracts the token from an Authorization header value. The
// "Bearer " scheme is optional; a bare token is passed through.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	tok := strings.TrimSpace(header)
	if len(tok) >= len(prefix) && strings.EqualFold(tok[:len(prefix)], prefix) {
		tok = strings.TrimSpace(tok[len(prefix):])
	} else if strings.EqualFold(tok, "bearer") {
		return "", false
	}
	return tok, tok != ""
}

// Verify returns ErrUnauthorized for any token the auth service does not accept.
// Transport failures are returned as-is.
func (v *Verifier) Verify(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
	}

	resp, err := v.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrUnauthorized
	}
	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil || u.ID == "" {
		return nil, ErrUnauthorized
	}
	return &u, nil
}
