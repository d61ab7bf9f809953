package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-marketplace/internal/config"
	"github.com/campus-marketplace/internal/infrastructure/backend"
	"github.com/campus-marketplace/internal/infrastructure/cep"
	"github.com/campus-marketplace/internal/infrastructure/dynamo"
	jwtinfra "github.com/campus-marketplace/internal/infrastructure/jwt"
	"github.com/campus-marketplace/internal/infrastructure/kv"
	s3infra "github.com/campus-marketplace/internal/infrastructure/s3"
	"github.com/campus-marketplace/internal/infrastructure/smtp"
	"github.com/campus-marketplace/internal/infrastructure/sns"
	"github.com/campus-marketplace/internal/logger"
	"github.com/campus-marketplace/internal/pkg/seal"
	transporthttp "github.com/campus-marketplace/internal/transport/http"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx := context.Background()

	store, err := newStore(ctx, cfg, lg)
	if err != nil {
		return err
	}
	tokens, err := newTokenProvider(cfg, lg)
	if err != nil {
		return err
	}
	sealer, err := newSealer(cfg, lg)
	if err != nil {
		return err
	}

	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	images := s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.AWSRegion, cfg.S3PublicBaseURL)

	deps := &transporthttp.Deps{
		Store:   store,
		Backend: backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, lg.Named("backend")),
		Mailer:  smtp.NewMailer(cfg, lg.Named("smtp")),
		Images:  images,
		Tokens:  tokens,
		CEP:     cep.NewClient(cfg.CEPBaseURL, cfg.BackendTimeout),
		Sealer:  sealer,
		Logger:  lg,
	}

	// SNS SMS sender (optional, sale notifications are skipped without it).
	if snsClient, err := sns.NewClient(ctx, cfg); err == nil {
		deps.SMS = sns.NewSender(snsClient, lg.Named("sns"))
	} else {
		lg.Warn("SNS sender not available", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	lg.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	lg.Info("server stopped")
	return nil
}

func newStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) (kv.Store, error) {
	if cfg.StoreDriver == "memory" {
		lg.Warn("using in-memory key-value store, state is lost on restart")
		return kv.NewMemoryStore(), nil
	}
	client, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Creates the table if it doesn't exist.
	dynamo.Bootstrap(ctx, client, cfg.KVTable, lg.Named("dynamo"))
	return dynamo.NewStore(client, cfg.KVTable), nil
}

// newTokenProvider loads the RSA key pair. Development falls back to a
// throwaway key so the service starts without key files.
func newTokenProvider(cfg *config.Config, lg *zap.Logger) (*jwtinfra.Provider, error) {
	p, err := jwtinfra.NewProvider(cfg)
	if err == nil {
		return p, nil
	}
	if !cfg.IsDevelopment() {
		return nil, fmt.Errorf("jwt provider: %w", err)
	}
	lg.Warn("JWT keys not available, using an ephemeral key", zap.Error(err))
	key, genErr := rsa.GenerateKey(rand.Reader, 2048)
	if genErr != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", genErr)
	}
	return jwtinfra.NewProviderFromKeys(key, &key.PublicKey, cfg.JWTExpiry), nil
}

func newSealer(cfg *config.Config, lg *zap.Logger) (*seal.Box, error) {
	if cfg.SealKey != "" {
		return seal.New(cfg.SealKey)
	}
	if !cfg.IsDevelopment() {
		return nil, errors.New("SEAL_KEY is required outside development")
	}
	lg.Warn("SEAL_KEY not set, pending registrations will not survive a restart")
	return seal.NewRandom()
}
