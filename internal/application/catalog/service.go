// Package catalog lists and edits marketplace products on behalf of the
// signed-in student and hosts their pictures.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/campus-marketplace/internal/domain"
	"github.com/campus-marketplace/internal/pkg/validate"
	"github.com/campus-marketplace/internal/pkg/whatsapp"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, token string, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, token, productID string) (*domain.Product, error)
	Create(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, token, productID string, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, token, productID string) error

	Favorite(ctx context.Context, token, productID string) error
	Unfavorite(ctx context.Context, token, productID string) error
	MyProducts(ctx context.Context, token string) ([]domain.Product, error)
	Favorites(ctx context.Context, token string) ([]domain.Product, error)

	UploadImage(ctx context.Context, token, productID string, in UploadInput) (*domain.Image, error)
	// ContactLink returns the WhatsApp link a buyer opens to message the seller.
	ContactLink(ctx context.Context, token, productID string) (string, error)
}

type productBackend interface {
	ListProducts(ctx context.Context, token string, f domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, token, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token, productID string, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, token, productID string) error
	AttachImage(ctx context.Context, token, productID, imageURL string) (*domain.Product, error)
	Favorite(ctx context.Context, token, productID string) error
	Unfavorite(ctx context.Context, token, productID string) error
	MyProducts(ctx context.Context, token string) ([]domain.Product, error)
	Favorites(ctx context.Context, token string) ([]domain.Product, error)
}

type ServiceDeps struct {
	Backend     productBackend
	Images      imageHost
	Marketplace string
	Logger      *zap.Logger
}

type service struct {
	backend     productBackend
	images      imageHost
	marketplace string
	logger      *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		backend:     deps.Backend,
		images:      deps.Images,
		marketplace: deps.Marketplace,
		logger:      deps.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *service) List(ctx context.Context, token string, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Page < 0 {
		return nil, fmt.Errorf("page must not be negative: %w", domain.ErrBadRequest)
	}
	return s.backend.ListProducts(ctx, token, filter)
}

func (s *service) Get(ctx context.Context, token, productID string) (*domain.Product, error) {
	return s.backend.GetProduct(ctx, token, productID)
}

func (s *service) Create(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error) {
	in = normalizeInput(in)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	p, err := s.backend.CreateProduct(ctx, token, in)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("create product: no product returned: %w", domain.ErrUpstreamUnavailable)
	}
	s.logger.Info("product created", zap.String("product_id", p.ProductID))
	return p, nil
}

func (s *service) Update(ctx context.Context, token, productID string, in domain.ProductInput) (*domain.Product, error) {
	in = normalizeInput(in)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	return s.backend.UpdateProduct(ctx, token, productID, in)
}

func (s *service) Delete(ctx context.Context, token, productID string) error {
	if err := s.backend.DeleteProduct(ctx, token, productID); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.String("product_id", productID))
	return nil
}

func (s *service) Favorite(ctx context.Context, token, productID string) error {
	return s.backend.Favorite(ctx, token, productID)
}

func (s *service) Unfavorite(ctx context.Context, token, productID string) error {
	return s.backend.Unfavorite(ctx, token, productID)
}

func (s *service) MyProducts(ctx context.Context, token string) ([]domain.Product, error) {
	return s.backend.MyProducts(ctx, token)
}

func (s *service) Favorites(ctx context.Context, token string) ([]domain.Product, error) {
	return s.backend.Favorites(ctx, token)
}

func (s *service) ContactLink(ctx context.Context, token, productID string) (string, error) {
	p, err := s.backend.GetProduct(ctx, token, productID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", fmt.Errorf("get product %s: no product returned: %w", productID, domain.ErrUpstreamUnavailable)
	}
	if p.Seller == nil {
		return "", fmt.Errorf("seller of %s unknown: %w", productID, domain.ErrNotFound)
	}
	link, err := whatsapp.Link(p.Seller.Cellphone, whatsapp.InterestMessage(p.Seller.Name, p.Title, s.marketplace))
	if err != nil {
		return "", fmt.Errorf("seller has no phone: %w", domain.ErrNotFound)
	}
	return link, nil
}

func normalizeInput(in domain.ProductInput) domain.ProductInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Condition = strings.TrimSpace(in.Condition)
	return in
}
