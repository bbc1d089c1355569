package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"clearing_proposals/internal/domain/token"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	Token     TokenConfig
	Storage   StorageConfig
	AWS       AWSConfig
	Assets    AssetsConfig
	Email     EmailConfig
	Payments  PaymentsConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port          string
	GinMode       string
	AdminAPIKey   string
	PublicBaseURL string
	// APIBaseURL is where this service is reachable; used for locally served
	// assets and the mock checkout page.
	APIBaseURL string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
	CompanyName string
	Currency    string
}

type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// StorageConfig selects the persistence backend ("dynamodb" or "memory").
type StorageConfig struct {
	Backend        string
	ProposalsTable string
	EventsTable    string
	TemplatesTable string
	SnapshotsTable string
	PaymentsTable  string
	// SeedTemplateID names the starter template loaded into the memory backend.
	SeedTemplateID string
}

type AWSConfig struct {
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	DynamoDBEndpoint string
	S3Endpoint       string
	SESEndpoint      string
}

type AssetsConfig struct {
	Bucket       string
	UsePathStyle bool
	URLTTL       time.Duration
}

type EmailConfig struct {
	From string
	// Transport is "ses" or "log".
	Transport string
}

type PaymentsConfig struct {
	AccessToken   string
	WebhookSecret string
	Mock          bool
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	RedisAddr         string
	RedisPassword     string
	Window            time.Duration
	WindowLimit       int
}

func Load() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		Server: ServerConfig{
			Port:          port,
			GinMode:       getEnv("GIN_MODE", "release"),
			AdminAPIKey:   os.Getenv("ADMIN_API_KEY"),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
			APIBaseURL:    strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:"+port), "/"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			CompanyName: getEnv("COMPANY_NAME", "Forestry Mulching Co."),
			Currency:    strings.ToUpper(getEnv("CURRENCY", "USD")),
		},
		Token: TokenConfig{
			Secret: os.Getenv("PROPOSAL_TOKEN_SECRET"),
			TTL:    getEnvAsDuration("PROPOSAL_TOKEN_TTL", token.DefaultTTL),
		},
		Storage: StorageConfig{
			Backend:        strings.ToLower(getEnv("STORAGE_BACKEND", "dynamodb")),
			ProposalsTable: getEnv("PROPOSALS_TABLE", "proposals"),
			EventsTable:    getEnv("PROPOSAL_EVENTS_TABLE", "proposal_events"),
			TemplatesTable: getEnv("TEMPLATES_TABLE", "pricing_templates"),
			SnapshotsTable: getEnv("SNAPSHOTS_TABLE", "proposal_snapshots"),
			PaymentsTable:  getEnv("PAYMENTS_TABLE", "payments"),
			SeedTemplateID: getEnv("SEED_TEMPLATE_ID", "standard"),
		},
		AWS: AWSConfig{
			Region:           getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:      os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
			DynamoDBEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),
			S3Endpoint:       os.Getenv("S3_ENDPOINT"),
			SESEndpoint:      os.Getenv("SES_ENDPOINT"),
		},
		Assets: AssetsConfig{
			Bucket:       os.Getenv("ASSETS_BUCKET"),
			UsePathStyle: getEnvAsBool("S3_USE_PATH_STYLE", false),
			URLTTL:       getEnvAsDuration("PDF_URL_TTL", 7*24*time.Hour),
		},
		Email: EmailConfig{
			From:      getEnv("EMAIL_FROM", "proposals@example.com"),
			Transport: strings.ToLower(getEnv("EMAIL_TRANSPORT", "ses")),
		},
		Payments: PaymentsConfig{
			AccessToken:   os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
			WebhookSecret: os.Getenv("MERCADOPAGO_WEBHOOK_SECRET"),
			Mock:          getEnvAsBool("PAYMENT_GATEWAY_MOCK", false) || getEnvAsBool("MERCADOPAGO_MOCK", false),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("PUBLIC_RATE_LIMIT_RPS", 1),
			Burst:             getEnvAsInt("PUBLIC_RATE_LIMIT_BURST", 10),
			RedisAddr:         os.Getenv("REDIS_ADDR"),
			RedisPassword:     os.Getenv("REDIS_PASSWORD"),
			Window:            getEnvAsDuration("PUBLIC_RATE_LIMIT_WINDOW", time.Minute),
			WindowLimit:       getEnvAsInt("PUBLIC_RATE_LIMIT_PER_WINDOW", 60),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Token.Secret) < token.MinSecretBytes {
		return fmt.Errorf("PROPOSAL_TOKEN_SECRET must be at least %d bytes", token.MinSecretBytes)
	}
	if c.Server.AdminAPIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY is required")
	}
	switch c.Storage.Backend {
	case "dynamodb", "memory":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be dynamodb or memory, got %q", c.Storage.Backend)
	}
	switch c.Email.Transport {
	case "ses", "log":
	default:
		return fmt.Errorf("EMAIL_TRANSPORT must be ses or log, got %q", c.Email.Transport)
	}
	if c.Token.TTL <= 0 {
		return fmt.Errorf("PROPOSAL_TOKEN_TTL must be positive")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("PUBLIC_RATE_LIMIT_RPS and PUBLIC_RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return defaultValue
	case "1", "true", "yes", "on", "mock":
		return true
	default:
		return false
	}
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}
	return value
}
