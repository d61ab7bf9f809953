package http

import (
	"context"
	"io"
	"time"

	"github.com/campus-marketplace/internal/domain"
	"github.com/campus-marketplace/internal/infrastructure/kv"
	jwtinfra "github.com/campus-marketplace/internal/infrastructure/jwt"
	"go.uber.org/zap"
)

// Backend is the marketplace REST backend as the router needs it.
type Backend interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.Credentials, error)
	Register(ctx context.Context, reg domain.Registration) error
	CurrentUser(ctx context.Context, token string) (*domain.User, error)

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

	GeneratePurchaseCode(ctx context.Context, token, productID string) (*domain.PurchaseCode, error)
	ConfirmPurchase(ctx context.Context, token, code string) (*domain.Purchase, error)
	Purchases(ctx context.Context, token string) ([]domain.Purchase, error)
	Sales(ctx context.Context, token string) ([]domain.Purchase, error)
}

// Mailer delivers verification codes.
type Mailer interface {
	SendVerificationCode(ctx context.Context, d domain.CodeDelivery) error
}

// ImageHost stores product pictures.
type ImageHost interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// TokenSigner issues and checks browser session tokens.
type TokenSigner interface {
	Sign(userID, email, sessionID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
	Expiry() time.Duration
}

type AddressLookup interface {
	Lookup(ctx context.Context, cep string) (*domain.Address, error)
}

// Sealer protects pending registrations at rest.
type Sealer interface {
	Seal(msg []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Store   kv.Store
	Backend Backend
	Mailer  Mailer
	Images  ImageHost
	SMS     SMSSender // optional
	Tokens  TokenSigner
	CEP     AddressLookup
	Sealer  Sealer
	Logger  *zap.Logger
}
