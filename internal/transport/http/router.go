package http

import (
	"net/http"

	"github.com/campus-marketplace/internal/application/address"
	"github.com/campus-marketplace/internal/application/catalog"
	"github.com/campus-marketplace/internal/application/purchase"
	"github.com/campus-marketplace/internal/application/session"
	"github.com/campus-marketplace/internal/application/verification"
	"github.com/campus-marketplace/internal/config"
	"github.com/campus-marketplace/internal/transport/http/handler"
	appmiddleware "github.com/campus-marketplace/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Load has already rejected malformed entries.
	trustedProxies, _ := cfg.TrustedProxyPrefixes()
	// 5 requests/second, burst of 10, on endpoints that send email or check secrets.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10, trustedProxies...)

	verificationSvc := verification.NewService(verification.ServiceDeps{
		Store:       deps.Store,
		Mailer:      deps.Mailer,
		Accounts:    deps.Backend,
		Sealer:      deps.Sealer,
		Logger:      logger.Named("verification"),
		TTL:         cfg.VerificationCodeTTL,
		Retention:   cfg.VerificationRetention,
		OriginLink:  cfg.OriginLink,
		EmailDomain: cfg.AllowedEmailDomain,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		Store:   deps.Store,
		Backend: deps.Backend,
		Tokens:  deps.Tokens,
		Logger:  logger.Named("session"),
	})
	catalogSvc := catalog.NewService(catalog.ServiceDeps{
		Backend:     deps.Backend,
		Images:      deps.Images,
		Marketplace: cfg.MarketplaceName,
		Logger:      logger.Named("catalog"),
	})
	purchaseDeps := purchase.ServiceDeps{
		Backend:     deps.Backend,
		Marketplace: cfg.MarketplaceName,
		Logger:      logger.Named("purchase"),
	}
	if deps.SMS != nil {
		purchaseDeps.SMS = deps.SMS
	}
	purchaseSvc := purchase.NewService(purchaseDeps)
	addressSvc := address.NewService(deps.CEP, deps.Store, logger.Named("address"))

	authMw := appmiddleware.Auth(sessionSvc)
	optionalAuthMw := appmiddleware.OptionalAuth(sessionSvc)

	healthH := handler.NewHealthHandler()
	registrationH := handler.NewRegistrationHandler(verificationSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	meH := handler.NewMeHandler(sessionSvc, catalogSvc, purchaseSvc)
	productH := handler.NewProductHandler(catalogSvc)
	purchaseH := handler.NewPurchaseHandler(purchaseSvc)
	addressH := handler.NewAddressHandler(addressSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/cep/{cep}", addressH.Lookup)

		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/registrations", registrationH.Register)
			r.Post("/registrations/resend", registrationH.Resend)
			r.Post("/registrations/verify", registrationH.Verify)
			r.Delete("/registrations", registrationH.Cancel)
			r.Post("/sessions/login", sessionH.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(optionalAuthMw)
			r.Get("/products", productH.List)
			r.Get("/products/{id}", productH.Get)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/me", meH.Profile)
			r.Get("/me/products", meH.Products)
			r.Get("/me/favorites", meH.Favorites)
			r.Get("/me/purchases", meH.Purchases)
			r.Get("/me/sales", meH.Sales)

			r.Post("/products", productH.Create)
			r.Put("/products/{id}", productH.Update)
			r.Delete("/products/{id}", productH.Delete)
			r.Post("/products/{id}/images", productH.UploadImage)
			r.Post("/products/{id}/favorite", productH.Favorite)
			r.Delete("/products/{id}/favorite", productH.Unfavorite)
			r.Get("/products/{id}/contact", productH.Contact)
			r.Post("/products/{id}/purchase-code", purchaseH.GenerateCode)
			r.Post("/purchases/confirm", purchaseH.Confirm)
		})
	})

	return r
}
