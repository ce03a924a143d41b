package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	awspkg "github.com/Mayank561/ECOMMERCE-API/pkg/aws"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds every setting the API reads at startup. It is built once and
// handed to the components that need it.
type Config struct {
	Port   string
	Env    string
	APIURL string

	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool

	JWTSecret string
	RedisURL  string

	UploadDir        string
	PublicBaseURL    string
	SearchAutoCreate bool

	AllowedOrigins     []string
	RateLimitPerMinute int
	RateLimitBurst     int

	AWS           awspkg.Options
	AWSUseSecrets bool
	SecretsPrefix string
	S3Bucket      string
	S3Prefix      string
	S3PublicURL   string
	SNSTopicArn   string

	CloudWatchEnabled       bool
	CloudWatchNamespace     string
	CloudWatchLogGroup      string
	CloudWatchRetentionDays int

	OTELCollectorHost string
}

// secretsClient is the part of pkg/aws.SecretsClient LoadConfig uses.
type secretsClient interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// LoadConfig loads .env (if present) and the environment into a Config and
// validates it. With AWS_USE_SECRETS=true, JWT_SECRET and MONGO_URI are read
// from Secrets Manager, falling back to the environment on failure.
func LoadConfig(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg := fromEnv(os.Getenv)
	if cfg.AWSUseSecrets {
		awsCfg, err := awspkg.LoadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			zap.L().Warn("Secrets Manager unavailable, using environment", zap.Error(err))
		} else {
			applySecrets(ctx, cfg, awspkg.NewSecretsClient(awsCfg))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv(getenv func(string) string) *Config {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	flag := func(key string) bool {
		b, _ := strconv.ParseBool(getenv(key))
		return b
	}
	number := func(key string, def int) int {
		if n, err := strconv.Atoi(getenv(key)); err == nil {
			return n
		}
		return def
	}

	return &Config{
		Port:   env("PORT", "3000"),
		Env:    env("ENV", "development"),
		APIURL: env("API_URL", "/api/v1"),

		MongoURI:          env("MONGO_URI", env("CONNECTION_STRING", "")),
		MongoDatabase:     env("MONGO_DATABASE", "eshop-database"),
		MongoTransactions: flag("MONGO_TRANSACTIONS"),

		JWTSecret: getenv("JWT_SECRET"),
		RedisURL:  env("REDIS_URL", ""),

		UploadDir:        env("UPLOAD_DIR", "public/uploads"),
		PublicBaseURL:    strings.TrimRight(env("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		SearchAutoCreate: flag("SEARCH_AUTO_CREATE"),

		AllowedOrigins:     splitList(env("ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute: number("RATE_LIMIT_PER_MINUTE", 300),
		RateLimitBurst:     number("RATE_LIMIT_BURST", 50),

		AWS: awspkg.Options{
			Region:          env("AWS_REGION", "us-east-1"),
			Endpoint:        getenv("AWS_ENDPOINT"),
			AccessKeyID:     getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: getenv("AWS_SECRET_ACCESS_KEY"),
		},
		AWSUseSecrets: flag("AWS_USE_SECRETS"),
		SecretsPrefix: env("AWS_SECRETS_PREFIX", "storefront/"),
		S3Bucket:      getenv("AWS_S3_BUCKET"),
		S3Prefix:      env("AWS_S3_PREFIX", "products/"),
		S3PublicURL:   getenv("AWS_CLOUDFRONT_DOMAIN"),
		SNSTopicArn:   getenv("SNS_TOPIC_ARN"),

		CloudWatchEnabled:       flag("CLOUDWATCH_ENABLED"),
		CloudWatchNamespace:     env("CLOUDWATCH_NAMESPACE", "Storefront"),
		CloudWatchLogGroup:      env("CLOUDWATCH_LOG_GROUP", awspkg.DefaultLogGroup),
		CloudWatchRetentionDays: number("CLOUDWATCH_LOG_RETENTION_DAYS", awspkg.DefaultRetentionDays),

		OTELCollectorHost: getenv("OTEL_COLLECTOR_HOST"),
	}
}

func applySecrets(ctx context.Context, cfg *Config, sm secretsClient) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for name, dst := range map[string]*string{
		"JWT_SECRET": &cfg.JWTSecret,
		"MONGO_URI":  &cfg.MongoURI,
	} {
		v, err := sm.GetSecret(ctx, cfg.SecretsPrefix+name)
		if err != nil || v == "" {
			zap.L().Warn("Secret not loaded, using environment", zap.String("secret", name), zap.Error(err))
			continue
		}
		*dst = v
	}
}

// Validate reports the first missing or malformed setting.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if !strings.HasPrefix(c.APIURL, "/") {
		return fmt.Errorf("API_URL must start with /, got %q", c.APIURL)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if !awspkg.ValidRetentionDays(c.CloudWatchRetentionDays) {
		return fmt.Errorf("CLOUDWATCH_LOG_RETENTION_DAYS %d is not a CloudWatch retention period", c.CloudWatchRetentionDays)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
