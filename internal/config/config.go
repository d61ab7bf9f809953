package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"3000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`

	// StoreDriver selects the key-value store: "dynamo" or "memory".
	StoreDriver string `env:"STORE_DRIVER" envDefault:"dynamo"`
	KVTable     string `env:"DYNAMO_TABLE_KV" envDefault:"kv_store"`

	S3BucketName    string `env:"S3_BUCKET_NAME" envDefault:"marketplace-images"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`

	JWTPrivateKeyPath string        `env:"JWT_PRIVATE_KEY_PATH" envDefault:"./private_key.pem"`
	JWTPublicKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH" envDefault:"./public_key.pem"`
	JWTExpiry         time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"1025"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"noreply@example.com"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	SNSRegion string `env:"SNS_REGION" envDefault:"us-east-1"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	// TrustedProxies lists reverse proxies (IPs or CIDRs) whose forwarding headers are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	BackendBaseURL string        `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8000"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	CEPBaseURL     string        `env:"CEP_BASE_URL" envDefault:"https://viacep.com.br/ws"`

	MarketplaceName string `env:"MARKETPLACE_NAME" envDefault:"Insper Marketplace"`
	// OriginLink is the front-end URL placed in verification emails.
	OriginLink string `env:"ORIGIN_LINK" envDefault:"http://localhost:5173"`
	// AllowedEmailDomain restricts registration to one community; empty disables the check.
	AllowedEmailDomain string `env:"ALLOWED_EMAIL_DOMAIN" envDefault:"insper.edu.br"`

	VerificationCodeTTL   time.Duration `env:"VERIFICATION_CODE_TTL" envDefault:"15m"`
	VerificationRetention time.Duration `env:"VERIFICATION_RETENTION" envDefault:"24h"`
	// SealKey is a hex-encoded 32-byte key protecting pending registrations at rest.
	SealKey string `env:"SEAL_KEY"`
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.StoreDriver != "dynamo" && cfg.StoreDriver != "memory" {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.VerificationCodeTTL <= 0 {
		return nil, fmt.Errorf("VERIFICATION_CODE_TTL must be positive")
	}
	if _, err := cfg.TrustedProxyPrefixes(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address is a single-host prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, v := range c.TrustedProxies {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// IsDevelopment reports whether the process runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
