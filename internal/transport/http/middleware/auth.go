package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/campus-marketplace/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the signed-in student behind a request.
type Principal struct {
	Session *domain.Session
	// BackendToken authenticates calls to the marketplace backend.
	BackendToken string
}

type sessionResolver interface {
	Resolve(ctx context.Context, bearer string) (*domain.Session, string, error)
}

// Auth rejects requests without a valid Bearer token and injects the Principal.
func Auth(resolver sessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer, ok := bearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			p, err := resolve(r.Context(), resolver, bearer)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthorized) {
					SetError(r.Context(), err)
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, p)))
		})
	}
}

// OptionalAuth injects the Principal when a valid token is present and lets
// anonymous requests through unchanged.
func OptionalAuth(resolver sessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bearer, ok := bearerToken(r); ok {
				if p, err := resolve(r.Context(), resolver, bearer); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), principalKey, p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext extracts the signed-in student from the request context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// BackendToken returns the caller's backend token, or "" for anonymous requests.
func BackendToken(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.BackendToken
	}
	return ""
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return tok, tok != ""
}

func resolve(ctx context.Context, resolver sessionResolver, bearer string) (*Principal, error) {
	sess, token, err := resolver.Resolve(ctx, bearer)
	if err != nil {
		return nil, err
	}
	return &Principal{Session: sess, BackendToken: token}, nil
}
