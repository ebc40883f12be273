package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authServer(t *testing.T) *Verifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			_, _ = w.Write([]byte(`{"id":"user-1","email":"a@example.com"}`))
		case "Bearer noid":
			_, _ = w.Write([]byte(`{"email":"a@example.com"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return NewVerifier(srv.URL+"/", "anon", srv.Client())
}

func TestVerify(t *testing.T) {
	v := authServer(t)
	ctx := context.Background()

	u, err := v.Verify(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)

	for _, tok := range []string{"bad", "noid", ""} {
		_, err := v.Verify(ctx, tok)
		assert.ErrorIs(t, err, ErrUnauthorized, "token %q", tok)
	}
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	tok, ok = BearerToken("bearer xyz")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	tok, ok = BearerToken("abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "   ", "Bearer ", "bearer"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, "header %q", h)
	}
}
