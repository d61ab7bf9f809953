package backend

import (
	"context"
	"net/http"

	"github.com/campus-marketplace/internal/domain"
)

func (c *Client) GeneratePurchaseCode(ctx context.Context, token, productID string) (*domain.PurchaseCode, error) {
	return unwrap(call[*domain.PurchaseCode](ctx, c, http.MethodPost, productPath(productID)+"/purchase-code", token, nil, nil))
}

func (c *Client) ConfirmPurchase(ctx context.Context, token, code string) (*domain.Purchase, error) {
	body := map[string]string{"code": code}
	return unwrap(call[*domain.Purchase](ctx, c, http.MethodPost, "/purchases/confirm", token, nil, body))
}

func (c *Client) Purchases(ctx context.Context, token string) ([]domain.Purchase, error) {
	return unwrap(call[[]domain.Purchase](ctx, c, http.MethodGet, "/users/me/purchases", token, nil, nil))
}

func (c *Client) Sales(ctx context.Context, token string) ([]domain.Purchase, error) {
	return unwrap(call[[]domain.Purchase](ctx, c, http.MethodGet, "/users/me/sales", token, nil, nil))
}
