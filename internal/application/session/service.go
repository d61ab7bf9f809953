package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campus-marketplace/internal/domain"
	"github.com/campus-marketplace/internal/infrastructure/kv"
	jwtinfra "github.com/campus-marketplace/internal/infrastructure/jwt"
	"github.com/campus-marketplace/internal/pkg/id"
	"github.com/campus-marketplace/internal/pkg/validate"
	"go.uber.org/zap"
)

const tokenKeyPrefix = "session:token:"

type LoginResult struct {
	Bearer  string
	Session *domain.Session
}

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	// Resolve verifies a browser bearer token and returns its session together
	// with the cached backend token.
	Resolve(ctx context.Context, bearer string) (*domain.Session, string, error)
	Current(ctx context.Context, backendToken string) (*domain.User, error)
}

type authBackend interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.Credentials, error)
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

type tokenSigner interface {
	Sign(userID, email, sessionID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
	Expiry() time.Duration
}

// cachedSession is what the store keeps under session:token:<id>.
type cachedSession struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ServiceDeps struct {
	Store   kv.Store
	Backend authBackend
	Tokens  tokenSigner
	Logger  *zap.Logger
	Now     func() time.Time
}

type service struct {
	store   kv.Store
	backend authBackend
	tokens  tokenSigner
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:   deps.Store,
		backend: deps.Backend,
		tokens:  deps.Tokens,
		logger:  deps.Logger,
		now:     deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	creds, err := s.backend.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if creds == nil || creds.Token == "" || creds.User == nil {
		return nil, fmt.Errorf("%w: login response without token", domain.ErrUpstreamUnavailable)
	}

	now := s.now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		UserID:    creds.User.UserID,
		Email:     req.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.Expiry()),
		User:      creds.User,
	}
	cached := cachedSession{
		Token:     creds.Token,
		UserID:    sess.UserID,
		Email:     sess.Email,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}
	if err := kv.SetJSON(ctx, s.store, tokenKey(sess.SessionID), cached, s.tokens.Expiry()); err != nil {
		return nil, fmt.Errorf("cache session: %w", err)
	}
	bearer, err := s.tokens.Sign(sess.UserID, sess.Email, sess.SessionID)
	if err != nil {
		_ = s.store.Remove(ctx, tokenKey(sess.SessionID))
		return nil, fmt.Errorf("sign token: %w", err)
	}
	s.logger.Info("session opened", zap.String("session_id", sess.SessionID), zap.String("user_id", sess.UserID))
	return &LoginResult{Bearer: bearer, Session: sess}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Remove(ctx, tokenKey(sessionID)); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	s.logger.Info("session closed", zap.String("session_id", sessionID))
	return nil
}

func (s *service) Resolve(ctx context.Context, bearer string) (*domain.Session, string, error) {
	claims, err := s.tokens.Verify(bearer)
	if err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	var cached cachedSession
	if err := kv.GetJSON(ctx, s.store, tokenKey(claims.SessionID), &cached); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("session ended: %w", domain.ErrUnauthorized)
		}
		return nil, "", err
	}
	sess := &domain.Session{
		SessionID: claims.SessionID,
		UserID:    cached.UserID,
		Email:     cached.Email,
		CreatedAt: cached.CreatedAt,
		ExpiresAt: cached.ExpiresAt,
	}
	return sess, cached.Token, nil
}

func (s *service) Current(ctx context.Context, backendToken string) (*domain.User, error) {
	return s.backend.CurrentUser(ctx, backendToken)
}

func tokenKey(sessionID string) string { return tokenKeyPrefix + sessionID }
