// Package purchase runs the in-person sale handshake: the seller generates a
// code, the buyer types it to confirm the purchase.
package purchase

import (
	"context"
	"fmt"
	"strings"

	"github.com/campus-marketplace/internal/domain"
	"github.com/campus-marketplace/internal/pkg/digits"
	"go.uber.org/zap"
)

type Service interface {
	GenerateCode(ctx context.Context, token, productID string) (*domain.PurchaseCode, error)
	Confirm(ctx context.Context, token, code string) (*domain.Purchase, error)
	Purchases(ctx context.Context, token string) ([]domain.Purchase, error)
	Sales(ctx context.Context, token string) ([]domain.Purchase, error)
}

type purchaseBackend interface {
	GeneratePurchaseCode(ctx context.Context, token, productID string) (*domain.PurchaseCode, error)
	ConfirmPurchase(ctx context.Context, token, code string) (*domain.Purchase, error)
	Purchases(ctx context.Context, token string) ([]domain.Purchase, error)
	Sales(ctx context.Context, token string) ([]domain.Purchase, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type ServiceDeps struct {
	Backend     purchaseBackend
	SMS         smsSender // optional
	Marketplace string
	Logger      *zap.Logger
}

type service struct {
	backend     purchaseBackend
	sms         smsSender
	marketplace string
	logger      *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		backend:     deps.Backend,
		sms:         deps.SMS,
		marketplace: deps.Marketplace,
		logger:      deps.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *service) GenerateCode(ctx context.Context, token, productID string) (*domain.PurchaseCode, error) {
	code, err := s.backend.GeneratePurchaseCode(ctx, token, productID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase code generated", zap.String("product_id", productID))
	return code, nil
}

// Confirm redeems a purchase code. The seller is told by SMS when a phone
// number is known; a failed notification does not fail the purchase.
func (s *service) Confirm(ctx context.Context, token, code string) (*domain.Purchase, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("purchase code is required: %w", domain.ErrBadRequest)
	}
	p, err := s.backend.ConfirmPurchase(ctx, token, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("confirm purchase: no purchase returned: %w", domain.ErrUpstreamUnavailable)
	}
	s.logger.Info("purchase confirmed", zap.String("purchase_id", p.PurchaseID))
	s.notifySeller(ctx, p)
	return p, nil
}

func (s *service) Purchases(ctx context.Context, token string) ([]domain.Purchase, error) {
	return s.backend.Purchases(ctx, token)
}

func (s *service) Sales(ctx context.Context, token string) ([]domain.Purchase, error) {
	return s.backend.Sales(ctx, token)
}

func (s *service) notifySeller(ctx context.Context, p *domain.Purchase) {
	if s.sms == nil || p.Product == nil || p.Product.Seller == nil {
		return
	}
	phone := digits.Only(p.Product.Seller.Cellphone)
	if phone == "" {
		return
	}
	msg := fmt.Sprintf("%s: sua venda de \"%s\" foi confirmada.", s.marketplace, p.Product.Title)
	if err := s.sms.SendSMS(ctx, "+"+phone, msg); err != nil {
		s.logger.Warn("sale notification failed", zap.String("purchase_id", p.PurchaseID), zap.Error(err))
	}
}
