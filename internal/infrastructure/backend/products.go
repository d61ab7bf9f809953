package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/campus-marketplace/internal/domain"
)

func (c *Client) ListProducts(ctx context.Context, token string, f domain.ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Condition != "" {
		q.Set("condition", f.Condition)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return unwrap(call[[]domain.Product](ctx, c, http.MethodGet, "/products", token, q, nil))
}

func (c *Client) GetProduct(ctx context.Context, token, productID string) (*domain.Product, error) {
	return unwrap(call[*domain.Product](ctx, c, http.MethodGet, productPath(productID), token, nil, nil))
}

func (c *Client) CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error) {
	return unwrap(call[*domain.Product](ctx, c, http.MethodPost, "/products", token, nil, in))
}

func (c *Client) UpdateProduct(ctx context.Context, token, productID string, in domain.ProductInput) (*domain.Product, error) {
	return unwrap(call[*domain.Product](ctx, c, http.MethodPut, productPath(productID), token, nil, in))
}

func (c *Client) DeleteProduct(ctx context.Context, token, productID string) error {
	_, err := unwrap(call[any](ctx, c, http.MethodDelete, productPath(productID), token, nil, nil))
	return err
}

// AttachImage records an already-hosted image URL on the product.
func (c *Client) AttachImage(ctx context.Context, token, productID, imageURL string) (*domain.Product, error) {
	body := map[string]string{"url": imageURL}
	return unwrap(call[*domain.Product](ctx, c, http.MethodPost, productPath(productID)+"/images", token, nil, body))
}

func (c *Client) Favorite(ctx context.Context, token, productID string) error {
	_, err := unwrap(call[any](ctx, c, http.MethodPost, productPath(productID)+"/favorite", token, nil, nil))
	return err
}

func (c *Client) Unfavorite(ctx context.Context, token, productID string) error {
	_, err := unwrap(call[any](ctx, c, http.MethodDelete, productPath(productID)+"/favorite", token, nil, nil))
	return err
}

func (c *Client) MyProducts(ctx context.Context, token string) ([]domain.Product, error) {
	return unwrap(call[[]domain.Product](ctx, c, http.MethodGet, "/users/me/products", token, nil, nil))
}

func (c *Client) Favorites(ctx context.Context, token string) ([]domain.Product, error) {
	return unwrap(call[[]domain.Product](ctx, c, http.MethodGet, "/users/me/favorites", token, nil, nil))
}

func productPath(productID string) string {
	return "/products/" + url.PathEscape(productID)
}
