package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/kyokan/internal/imaging"
	"github.com/spacesedan/kyokan/internal/scoring"
)

const (
	PersistenceNone     = "none"
	PersistenceFile     = "file"
	PersistenceValkey   = "valkey"
	PersistenceDynamoDB = "dynamodb"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Env         string
	Server      ServerConfig
	Upload      UploadConfig
	Image       ImageConfig
	AI          AIConfig
	Scoring     ScoringConfig
	Persistence PersistenceConfig
	Valkey      ValkeyConfig
	AWS         AWSConfig
}

type ServerConfig struct {
	Port           string
	LogLevel       string
	AllowedOrigins []string
}

type UploadConfig struct {
	MaxBytes int64
}

type ImageConfig struct {
	MaxWidth    int
	MaxPixels   int
	Format      imaging.Format
	JPEGQuality int
}

type AIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type ScoringConfig struct {
	Table          scoring.TableVariant
	IncludeRawText bool
}

type PersistenceConfig struct {
	Backend    string
	ResultsDir string
}

type ValkeyConfig struct {
	InitAddress string
	Password    string
	UseTLS      bool
	TTL         time.Duration
}

type AWSConfig struct {
	Region      string
	Endpoint    string
	ResultTable string
}

// Load reads the configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	var errs []error

	table, err := scoring.ParseTableVariant(getEnvOrDefault("TIER_TABLE", string(scoring.VariantCategory)))
	errs = append(errs, err)
	format, err := imaging.ParseFormat(getEnvOrDefault("IMAGE_FORMAT", string(imaging.FormatJPEG)))
	errs = append(errs, err)

	cfg := &Config{
		Env: getEnvOrDefault("APP_ENV", "dev"),
		Server: ServerConfig{
			Port:           getEnvOrDefault("PORT", "8000"),
			LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
			AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		},
		Upload: UploadConfig{
			MaxBytes: getInt64(&errs, "UPLOAD_MAX_BYTES", 2*1024*1024),
		},
		Image: ImageConfig{
			MaxWidth:    getInt(&errs, "IMAGE_MAX_WIDTH", imaging.DefaultMaxWidth),
			MaxPixels:   getInt(&errs, "IMAGE_MAX_PIXELS", imaging.DefaultMaxPixels),
			Format:      format,
			JPEGQuality: getInt(&errs, "IMAGE_JPEG_QUALITY", imaging.DefaultJPEGQuality),
		},
		AI: AIConfig{
			APIKey:    os.Getenv("OPENAI_API_KEY"),
			BaseURL:   os.Getenv("OPENAI_BASE_URL"),
			Model:     getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
			MaxTokens: getInt(&errs, "AI_MAX_TOKENS", 300),
			Timeout:   getDuration(&errs, "AI_TIMEOUT", 60*time.Second),
		},
		Scoring: ScoringConfig{
			Table:          table,
			IncludeRawText: getBool(&errs, "INCLUDE_RAW_TEXT", true),
		},
		Persistence: PersistenceConfig{
			Backend:    strings.ToLower(getEnvOrDefault("PERSISTENCE", PersistenceNone)),
			ResultsDir: getEnvOrDefault("RESULTS_DIR", "results"),
		},
		Valkey: ValkeyConfig{
			InitAddress: os.Getenv("VALKEY_INIT_ADDRESS"),
			Password:    os.Getenv("VALKEY_PASSWORD"),
			UseTLS:      os.Getenv("VALKEY_TLS") == "true",
			TTL:         getDuration(&errs, "VALKEY_RESULT_TTL", 0),
		},
		AWS: AWSConfig{
			Region:      getEnvOrDefault("AWS_REGION", "us-west-2"),
			Endpoint:    os.Getenv("AWS_ENDPOINT"),
			ResultTable: getEnvOrDefault("DYNAMODB_RESULTS_TABLE", "KyokanResults"),
		},
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	var errs []error

	if c.AI.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if c.Image.MaxWidth < 0 {
		errs = append(errs, errors.New("IMAGE_MAX_WIDTH must not be negative"))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}

	switch c.Persistence.Backend {
	case PersistenceNone, PersistenceFile, PersistenceDynamoDB:
	case PersistenceValkey:
		if c.Valkey.InitAddress == "" {
			errs = append(errs, errors.New("VALKEY_INIT_ADDRESS is required when PERSISTENCE=valkey"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown PERSISTENCE %q", c.Persistence.Backend))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(errs *[]error, key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
}

func getInt64(errs *[]error, key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
}

func getBool(errs *[]error, key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
}

// getDuration accepts Go durations ("90s") or a bare number of seconds.
func getDuration(errs *[]error, key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
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
