package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8080
	DefaultLogLevel    = "INFO"
	DefaultTransport   = "stdio"
	DefaultHTTPTimeout = 60 * time.Second
	DefaultPageLimit   = 50
)

var (
	ErrMissingURL    = errors.New("CONFLUENCE_URL environment variable not set")
	ErrMissingToken  = errors.New("CONFLUENCE_PERSONAL_TOKEN environment variable not set")
	ErrMissingBucket = errors.New("S3_BUCKET environment variable not set")
)

type Config struct {
	ConfluenceURL string `validate:"omitempty,url"`
	PersonalToken string

	LogLevel  string `validate:"oneof=DEBUG INFO WARN WARNING ERROR CRITICAL"`
	Debug     bool
	Transport string `validate:"oneof=stdio sse http"`
	Host      string `validate:"required"`
	Port      int    `validate:"gt=0,lt=65536"`

	HTTPTimeout time.Duration `validate:"gt=0"`
	PageLimit   int           `validate:"gt=0"`

	// Relative output paths are redirected under OutputMount when it is set.
	OutputMount   string
	OutputWorkdir string

	S3 S3Config
}

type S3Config struct {
	ApiURL     string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string
}

// Load reads .env and the environment. Values are not validated here so
// that help output works with a broken environment; call Validate before
// using the configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	config := &Config{
		ConfluenceURL: strings.TrimRight(getEnv("CONFLUENCE_URL", ""), "/"),
		PersonalToken: getEnv("CONFLUENCE_PERSONAL_TOKEN", ""),
		LogLevel:      strings.ToUpper(getEnv("LOG_LEVEL", DefaultLogLevel)),
		Debug:         getEnvBool("MCP_DEBUG", false),
		Transport:     strings.ToLower(strings.TrimSpace(getEnv("TRANSPORT", DefaultTransport))),
		Host:          getEnv("MCP_HOST", DefaultHost),
		Port:          getEnvInt("MCP_PORT", DefaultPort),
		HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", DefaultHTTPTimeout),
		PageLimit:     getEnvInt("PAGE_LIMIT", DefaultPageLimit),
		OutputMount:   getEnv("OUTPUT_MOUNT", ""),
		OutputWorkdir: getEnv("OUTPUT_WORKDIR", ""),
		S3: S3Config{
			ApiURL:     getEnv("S3_API_URL", ""),
			AccessKey:  getEnv("S3_ACCESS_KEY", ""),
			SecretKey:  getEnv("S3_SECRET_KEY", ""),
			BucketName: getEnv("S3_BUCKET", ""),
			Region:     getEnv("S3_REGION", ""),
		},
	}

	return config, nil
}

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid configuration: %s=%v (%s)", fe.Field(), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RequireConfluence checks the settings needed before any remote call.
func (c *Config) RequireConfluence() error {
	if c.ConfluenceURL == "" {
		return ErrMissingURL
	}
	if c.PersonalToken == "" {
		return ErrMissingToken
	}
	return nil
}

func (c *Config) RequireS3() error {
	if c.S3.BucketName == "" {
		return ErrMissingBucket
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		// out-of-range sentinel so Validate reports the bad value
		return -1
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
