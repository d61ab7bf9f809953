package cep

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campus-marketplace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/01001000/json/", r.URL.Path)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second)
}

func TestLookup_Found(t *testing.T) {
	c := newServer(t, 200, `{"cep":"01001-000","logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`)

	addr, err := c.Lookup(context.Background(), "01001000")
	require.NoError(t, err)
	assert.Equal(t, &domain.Address{
		CEP: "01001-000", Street: "Praça da Sé", Neighborhood: "Sé", City: "São Paulo", State: "SP",
	}, addr)
}

func TestLookup_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"erro flag", 200, `{"erro": true}`, domain.ErrNotFound},
		{"erro string", 200, `{"erro": "true"}`, domain.ErrNotFound},
		{"bad format", 400, `<html></html>`, domain.ErrBadRequest},
		{"server down", 503, ``, domain.ErrUpstreamUnavailable},
		{"garbage", 200, `nope`, domain.ErrUpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newServer(t, tt.status, tt.body).Lookup(context.Background(), "01001000")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
