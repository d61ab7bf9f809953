// Package cep looks up Brazilian postal codes on ViaCEP.
package cep

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/campus-marketplace/internal/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: timeout}}
}

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	// Erro is true (or "true" on newer deployments) for unknown codes.
	Erro any `json:"erro"`
}

// Lookup resolves an 8-digit CEP. cep must already be normalised to digits.
func (c *Client) Lookup(ctx context.Context, cep string) (*domain.Address, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", c.baseURL, cep), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: viacep: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("cep %s: %w", cep, domain.ErrBadRequest)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: viacep status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var out viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode viacep: %v", domain.ErrUpstreamUnavailable, err)
	}
	if out.Erro == true || out.Erro == "true" {
		return nil, fmt.Errorf("cep %s: %w", cep, domain.ErrNotFound)
	}
	return &domain.Address{
		CEP:          out.CEP,
		Street:       out.Logradouro,
		Neighborhood: out.Bairro,
		City:         out.Localidade,
		State:        out.UF,
	}, nil
}
