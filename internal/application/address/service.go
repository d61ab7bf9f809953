// Package address resolves Brazilian postal codes (CEP) for the pickup address form.
package address

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campus-marketplace/internal/domain"
	"github.com/campus-marketplace/internal/infrastructure/kv"
	"github.com/campus-marketplace/internal/pkg/digits"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix = "cep:"
	cacheTTL       = 7 * 24 * time.Hour
)

type Service interface {
	Lookup(ctx context.Context, cep string) (*domain.Address, error)
}

type lookupClient interface {
	Lookup(ctx context.Context, cep string) (*domain.Address, error)
}

type service struct {
	client lookupClient
	cache  kv.Store
	logger *zap.Logger
}

// NewService builds the lookup. cache may be nil.
func NewService(client lookupClient, cache kv.Store, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{client: client, cache: cache, logger: logger}
}

func (s *service) Lookup(ctx context.Context, cep string) (*domain.Address, error) {
	code := digits.Only(cep)
	if len(code) != 8 {
		return nil, fmt.Errorf("cep must have 8 digits: %w", domain.ErrBadRequest)
	}

	if s.cache != nil {
		var cached domain.Address
		err := kv.GetJSON(ctx, s.cache, cacheKeyPrefix+code, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("cep cache read failed", zap.String("cep", code), zap.Error(err))
		}
	}

	addr, err := s.client.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := kv.SetJSON(ctx, s.cache, cacheKeyPrefix+code, addr, cacheTTL); err != nil {
			s.logger.Warn("cep cache write failed", zap.String("cep", code), zap.Error(err))
		}
	}
	return addr, nil
}
