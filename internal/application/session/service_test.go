package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/campus-marketplace/internal/domain"
	"github.com/campus-marketplace/internal/infrastructure/kv"
	jwtinfra "github.com/campus-marketplace/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockBackend struct{ mock.Mock }

func (m *mockBackend) Login(ctx context.Context, req domain.LoginRequest) (*domain.Credentials, error) {
	args := m.Called(ctx, req)
	if c, _ := args.Get(0).(*domain.Credentials); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Sign(userID, email, sessionID string) (string, error) {
	args := m.Called(userID, email, sessionID)
	return args.String(0), args.Error(1)
}

func (m *mockTokens) Verify(token string) (*jwtinfra.Claims, error) {
	args := m.Called(token)
	if c, _ := args.Get(0).(*jwtinfra.Claims); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTokens) Expiry() time.Duration { return time.Hour }

// --- builder ---

func newTestService(store kv.Store, backend *mockBackend, tokens *mockTokens) Service {
	return NewService(ServiceDeps{Store: store, Backend: backend, Tokens: tokens})
}

func creds() *domain.Credentials {
	return &domain.Credentials{Token: "backend-tok", User: &domain.User{UserID: "u1", Name: "A", Email: "a@insper.edu.br"}}
}

// --- Login ---

func TestLogin_CachesBackendToken(t *testing.T) {
	store := kv.NewMemoryStore()
	backend, tokens := &mockBackend{}, &mockTokens{}
	backend.On("Login", mock.Anything, domain.LoginRequest{Email: "a@insper.edu.br", Password: "p"}).Return(creds(), nil)
	tokens.On("Sign", "u1", "a@insper.edu.br", mock.AnythingOfType("string")).Return("bearer", nil)
	svc := newTestService(store, backend, tokens)

	res, err := svc.Login(context.Background(), domain.LoginRequest{Email: " A@insper.edu.br ", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.Bearer)
	assert.Equal(t, "u1", res.Session.UserID)
	assert.NotEmpty(t, res.Session.SessionID)

	var cached cachedSession
	require.NoError(t, kv.GetJSON(context.Background(), store, tokenKey(res.Session.SessionID), &cached))
	assert.Equal(t, "backend-tok", cached.Token)
}

func TestLogin_ValidationError(t *testing.T) {
	svc := newTestService(kv.NewMemoryStore(), &mockBackend{}, &mockTokens{})
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "not-an-email"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestLogin_BackendRejects(t *testing.T) {
	store := kv.NewMemoryStore()
	backend := &mockBackend{}
	backend.On("Login", mock.Anything, mock.Anything).
		Return(nil, &domain.UpstreamError{Status: http.StatusUnauthorized, Detail: "Email ou senha incorretos"})
	svc := newTestService(store, backend, &mockTokens{})

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@insper.edu.br", Password: "x"})
	assert.EqualError(t, err, "Email ou senha incorretos")
	assert.Equal(t, 0, store.Len())
}

func TestLogin_SignFailureDropsCache(t *testing.T) {
	store := kv.NewMemoryStore()
	backend, tokens := &mockBackend{}, &mockTokens{}
	backend.On("Login", mock.Anything, mock.Anything).Return(creds(), nil)
	tokens.On("Sign", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("no key"))

	_, err := newTestService(store, backend, tokens).Login(context.Background(), domain.LoginRequest{Email: "a@insper.edu.br", Password: "p"})
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

// --- Resolve / Logout ---

func TestResolve_AfterLoginAndLogout(t *testing.T) {
	store := kv.NewMemoryStore()
	backend, tokens := &mockBackend{}, &mockTokens{}
	backend.On("Login", mock.Anything, mock.Anything).Return(creds(), nil)
	var sessionID string
	tokens.On("Sign", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sessionID = args.String(2) }).
		Return("bearer", nil)
	svc := newTestService(store, backend, tokens)
	ctx := context.Background()

	_, err := svc.Login(ctx, domain.LoginRequest{Email: "a@insper.edu.br", Password: "p"})
	require.NoError(t, err)
	tokens.On("Verify", "bearer").Return(&jwtinfra.Claims{UserID: "u1", SessionID: sessionID}, nil)

	sess, token, err := svc.Resolve(ctx, "bearer")
	require.NoError(t, err)
	assert.Equal(t, "backend-tok", token)
	assert.Equal(t, "u1", sess.UserID)

	require.NoError(t, svc.Logout(ctx, sessionID))
	_, _, err = svc.Resolve(ctx, "bearer")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestResolve_BadToken(t *testing.T) {
	tokens := &mockTokens{}
	tokens.On("Verify", "junk").Return(nil, errors.New("token is malformed"))

	_, _, err := newTestService(kv.NewMemoryStore(), &mockBackend{}, tokens).Resolve(context.Background(), "junk")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestCurrent(t *testing.T) {
	backend := &mockBackend{}
	backend.On("CurrentUser", mock.Anything, "backend-tok").Return(&domain.User{UserID: "u1"}, nil)

	u, err := newTestService(kv.NewMemoryStore(), backend, &mockTokens{}).Current(context.Background(), "backend-tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
}
