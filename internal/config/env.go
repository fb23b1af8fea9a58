package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	StoreDriver   string // memory | sqlite | postgres | redis | s3
	DatabaseURL   string
	SslCertPath   string
	SqlitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTLS      bool
	RedisPrefix   string
	AwsAccessKey  string
	AwsSecretKey  string
	AwsRegion     string
	BucketName    string
	S3Prefix      string

	AIProvider    string // gemini | openai | dryrun
	AIAPIKey      string
	GenModel      string
	PracticeModel string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ModelTimeout  time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	HistoryLimit       int
	ContactEmail       string
	AttachmentMaxBytes int64
	AttachmentMaxChars int

	AMQPURL      string
	HistoryQueue string

	RateLimit RateLimitConfig

	LogLevel  string
	LogFormat string
}

// RateLimitConfig drives the Redis token bucket guarding model endpoints.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8888"}),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SslCertPath:   getEnv("SSL_CERT_PATH", ""),
		SqlitePath:    getEnv("SQLITE_PATH", "chatters.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisTLS:      getEnvBool("REDIS_TLS", false),
		RedisPrefix:   getEnv("REDIS_PREFIX", "chatters:"),
		AwsAccessKey:  getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:  getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:     getEnv("AWS_REGION", "us-east-2"),
		BucketName:    getEnv("BUCKET_NAME", "chatters-profiles"),
		S3Prefix:      getEnv("S3_PREFIX", "kv/"),

		AIProvider:    strings.ToLower(getEnv("AI_PROVIDER", "gemini")),
		AIAPIKey:      getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		GenModel:      getEnv("GEN_MODEL", ""),
		PracticeModel: getEnv("PRACTICE_MODEL", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		ModelTimeout:  getEnvDuration("MODEL_TIMEOUT", 45*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		HistoryLimit:       getEnvInt("HISTORY_LIMIT", 200),
		ContactEmail:       getEnv("CONTACT_EMAIL", "zhaohaw@uci.edu"),
		AttachmentMaxBytes: int64(getEnvInt("ATTACHMENT_MAX_BYTES", 10<<20)),
		AttachmentMaxChars: getEnvInt("ATTACHMENT_MAX_CHARS", 4000),

		AMQPURL:      getEnv("AMQP_URL", getEnv("RABBITMQ_URL", "")),
		HistoryQueue: getEnv("HISTORY_QUEUE", "history.saved"),

		RateLimit: RateLimitConfig{
			Enabled:        getEnvBool("RATE_LIMIT_ENABLED", false),
			Capacity:       getEnvInt("RATE_LIMIT_CAPACITY", 30),
			RefillTokens:   getEnvInt("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: getEnvDuration("RATE_LIMIT_REFILL_INTERVAL", 2*time.Second),
			TTL:            getEnvDuration("RATE_LIMIT_TTL", 10*time.Minute),
			Prefix:         getEnv("RATE_LIMIT_PREFIX", "rl"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if cfg.RateLimit.Capacity < 1 {
		cfg.RateLimit.Capacity = 1
	}
	if cfg.RateLimit.RefillTokens < 1 {
		cfg.RateLimit.RefillTokens = 1
	}
	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RateLimit.RefillInterval; cfg.RateLimit.TTL < minTTL {
		cfg.RateLimit.TTL = minTTL
	}

	return cfg
}

var defaultModels = map[string][2]string{
	"gemini": {"gemini-3-flash-preview", "gemini-3-pro-preview"},
	"openai": {"gpt-4o-mini", "gpt-4o"},
}

// Models returns the generation and practice model names, falling back to
// the defaults of the selected provider for whichever is unset.
func (c *Config) Models() (gen, practice string) {
	d := defaultModels[c.AIProvider]
	gen, practice = c.GenModel, c.PracticeModel
	if gen == "" {
		gen = d[0]
	}
	if practice == "" {
		practice = d[1]
	}
	return gen, practice
}

// Validate reports every setting the selected store and provider need but
// did not get.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case "memory":
	case "sqlite":
		if c.SqlitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH not set"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL not set"))
		}
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR not set"))
		}
	case "s3":
		if c.AwsAccessKey == "" || c.AwsSecretKey == "" {
			errs = append(errs, errors.New("AWS credentials not set"))
		}
		if c.BucketName == "" {
			errs = append(errs, errors.New("BUCKET_NAME not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.AIProvider {
	case "dryrun":
	case "gemini":
		if c.AIAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY not set"))
		}
	case "openai":
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY or OPENAI_BASE_URL must be set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider))
	}

	if c.RateLimit.Enabled && c.RedisAddr == "" {
		errs = append(errs, errors.New("RATE_LIMIT_ENABLED requires REDIS_ADDR"))
	}
	if c.HistoryLimit < 1 {
		errs = append(errs, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit))
	}

	return errors.Join(errs...)
}

// ValidateServer adds the checks only the HTTP API needs.
func (c *Config) ValidateServer() error {
	err := c.Validate()
	if c.JWTSecret == "" {
		err = errors.Join(err, errors.New("JWT_SECRET not set"))
	}
	return err
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warnf("%s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warnf("%s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
