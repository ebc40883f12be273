package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/asaas-gateway/internal/config"
)

func TestNewServer_ReadTimeouts(t *testing.T) {
	cfg := &config.Config{
		HTTPAddr:              ":0",
		HTTPReadHeaderTimeout: 5 * time.Second,
		HTTPReadTimeout:       15 * time.Second,
	}
	srv := newServer(cfg, http.NotFoundHandler())

	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
	assert.NotNil(t, srv.Handler)
}
