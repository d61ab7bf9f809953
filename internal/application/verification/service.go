// Package verification proves a student controls an email address before the
// account is created upstream. A numeric code is emailed, kept with its issue
// time in the key-value store, and checked against what the student types.
package verification

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/campus-marketplace/internal/domain"
	"github.com/campus-marketplace/internal/infrastructure/kv"
	"github.com/campus-marketplace/internal/pkg/validate"
	"go.uber.org/zap"
)

const (
	codeKeyPrefix         = "verification:code:"
	registrationKeyPrefix = "verification:registration:"
	verifiedKeyPrefix     = "verification:verified:"

	codeSpace = 1_000_000
)

// Service is the per-email handshake: NoPending → CodeIssued → Verified | NoPending.
type Service interface {
	// IssueCode stores the code and the registration form, then emails the code.
	// If delivery fails neither record is kept.
	IssueCode(ctx context.Context, reg domain.Registration) error
	// ResendCode issues a fresh code for the registration already on file.
	ResendCode(ctx context.Context, email string) error
	// SubmitCode checks candidate and, on a match, creates the account upstream.
	SubmitCode(ctx context.Context, email, candidate string) error
	// Cancel forgets any pending verification for email. Absent records are fine.
	Cancel(ctx context.Context, email string) error
}

type codeSender interface {
	SendVerificationCode(ctx context.Context, d domain.CodeDelivery) error
}

type accountCreator interface {
	Register(ctx context.Context, reg domain.Registration) error
}

type sealer interface {
	Seal(msg []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

type ServiceDeps struct {
	Store    kv.Store
	Mailer   codeSender
	Accounts accountCreator
	Sealer   sealer
	Logger   *zap.Logger

	TTL       time.Duration
	Retention time.Duration
	// OriginLink is the front-end URL included in the email.
	OriginLink  string
	EmailDomain string

	// Now and NewCode default to the wall clock and a crypto/rand code.
	Now     func() time.Time
	NewCode func() (string, error)
}

type service struct {
	store       kv.Store
	mailer      codeSender
	accounts    accountCreator
	sealer      sealer
	logger      *zap.Logger
	ttl         time.Duration
	retention   time.Duration
	originLink  string
	emailDomain string
	now         func() time.Time
	newCode     func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:       deps.Store,
		mailer:      deps.Mailer,
		accounts:    deps.Accounts,
		sealer:      deps.Sealer,
		logger:      deps.Logger,
		ttl:         deps.TTL,
		retention:   deps.Retention,
		originLink:  deps.OriginLink,
		emailDomain: deps.EmailDomain,
		now:         deps.Now,
		newCode:     deps.NewCode,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = RandomCode
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// RandomCode returns a uniformly random code in [0, 1_000_000) as six digits.
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *service) IssueCode(ctx context.Context, reg domain.Registration) error {
	reg.Email = normalizeEmail(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	if err := validate.Struct(reg); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if err := validate.EmailDomain(reg.Email, s.emailDomain); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	return s.issue(ctx, reg)
}

func (s *service) ResendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	reg, err := s.loadRegistration(ctx, email)
	if err != nil {
		return err
	}
	return s.issue(ctx, *reg)
}

func (s *service) issue(ctx context.Context, reg domain.Registration) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}
	pending := domain.PendingVerification{Code: code, IssuedAt: s.now()}
	if err := kv.SetJSON(ctx, s.store, codeKey(reg.Email), pending, s.recordTTL()); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	if err := s.storeRegistration(ctx, reg); err != nil {
		s.purge(ctx, reg.Email)
		return fmt.Errorf("store registration: %w", err)
	}

	err = s.mailer.SendVerificationCode(ctx, domain.CodeDelivery{
		RecipientName:  reg.Name,
		RecipientEmail: reg.Email,
		Code:           code,
		OriginLink:     s.originLink,
	})
	if err != nil {
		s.purge(ctx, reg.Email)
		s.logger.Warn("verification code delivery failed", zap.String("email", reg.Email), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	s.logger.Info("verification code issued", zap.String("email", reg.Email))
	return nil
}

func (s *service) SubmitCode(ctx context.Context, email, candidate string) error {
	email = normalizeEmail(email)

	var pending domain.PendingVerification
	if err := kv.GetJSON(ctx, s.store, codeKey(email), &pending); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNoValidCode
		}
		return fmt.Errorf("load verification code: %w", err)
	}
	if pending.Expired(s.now(), s.ttl) {
		if err := s.store.Remove(ctx, codeKey(email)); err != nil {
			s.logger.Warn("failed to purge expired verification code", zap.String("email", email), zap.Error(err))
		}
		return domain.ErrNoValidCode
	}
	if !strings.EqualFold(strings.TrimSpace(candidate), pending.Code) {
		return domain.ErrIncorrectCode
	}

	reg, err := s.loadRegistration(ctx, email)
	if err != nil {
		return err
	}
	// Account creation errors carry the backend's message and leave the
	// pending records in place so the student can retry.
	if err := s.accounts.Register(ctx, *reg); err != nil {
		return err
	}

	s.purge(ctx, email)
	if err := s.store.Set(ctx, verifiedKey(email), []byte("true"), 0); err != nil {
		s.logger.Warn("failed to mark email as verified", zap.String("email", email), zap.Error(err))
	}
	s.logger.Info("email verified", zap.String("email", email))
	return nil
}

func (s *service) Cancel(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.store.Remove(ctx, codeKey(email)); err != nil {
		return fmt.Errorf("remove verification code: %w", err)
	}
	if err := s.store.Remove(ctx, registrationKey(email)); err != nil {
		return fmt.Errorf("remove registration: %w", err)
	}
	return nil
}

func (s *service) storeRegistration(ctx context.Context, reg domain.Registration) error {
	raw, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	sealed, err := s.sealer.Seal(raw)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, registrationKey(reg.Email), sealed, s.recordTTL())
}

func (s *service) loadRegistration(ctx context.Context, email string) (*domain.Registration, error) {
	sealed, err := s.store.Get(ctx, registrationKey(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRegistrationMissing
		}
		return nil, fmt.Errorf("load registration: %w", err)
	}
	raw, err := s.sealer.Open(sealed)
	if err != nil {
		s.logger.Warn("unreadable registration record", zap.String("email", email), zap.Error(err))
		return nil, domain.ErrRegistrationMissing
	}
	var reg domain.Registration
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, domain.ErrRegistrationMissing
	}
	return &reg, nil
}

// purge removes both pending records. Failures are logged: the records expire on their own.
func (s *service) purge(ctx context.Context, email string) {
	for _, key := range []string{codeKey(email), registrationKey(email)} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to purge verification record", zap.String("key", key), zap.Error(err))
		}
	}
}

// recordTTL is a storage-level expiry for housekeeping only. The issuedAt
// check in SubmitCode is what decides whether a code is still valid.
func (s *service) recordTTL() time.Duration {
	return s.ttl + s.retention
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func codeKey(email string) string         { return codeKeyPrefix + email }
func registrationKey(email string) string { return registrationKeyPrefix + email }
func verifiedKey(email string) string     { return verifiedKeyPrefix + email }
