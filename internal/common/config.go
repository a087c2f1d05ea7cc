package common

import (
	"os"
	"strconv"
	"time"
)

// EnvDevelopment enables the local-development storage escape hatch.
const EnvDevelopment = "development"

// Config holds all application configuration
type Config struct {
	Environment string
	Database    DatabaseConfig
	Server      ServerConfig
	Storage     StorageConfig
	Extract     ExtractConfig
	Model       ModelConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// StorageConfig holds object-storage configuration
type StorageConfig struct {
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	// AllowedHostSuffix is the storage domain suffix direct-upload
	// completion accepts fetch-back URLs from.
	AllowedHostSuffix string
	// TokenSecret signs scoped direct-upload credentials.
	TokenSecret string
}

// ExtractConfig holds extraction-related configuration
type ExtractConfig struct {
	Pdftoppm      string
	Tesseract     string
	Antiword      string
	TesseractLang string
	DPI           int
}

// ModelConfig holds generative-model configuration
type ModelConfig struct {
	BaseURL     string
	APIKey      string
	Name        string
	Temperature float64
	Timeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Environment: getEnv("APP_ENV", EnvDevelopment),
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Storage: StorageConfig{
			MinioEndpoint:      getEnv("STORAGE_ENDPOINT", ""),
			MinioAccessKey:     getEnv("STORAGE_ACCESS_KEY", ""),
			MinioSecretKey:     getEnv("STORAGE_SECRET_KEY", ""),
			MinioBucket:        getEnv("STORAGE_BUCKET", "casefiles"),
			MinioUseSSL:        getEnvAsBool("STORAGE_USE_SSL", true),
			SupabaseURL:        getEnv("SUPABASE_URL", ""),
			SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			SupabaseBucket:     getEnv("SUPABASE_BUCKET", "casefiles"),
			AllowedHostSuffix:  getEnv("STORAGE_ALLOWED_HOST_SUFFIX", ""),
			TokenSecret:        getEnv("UPLOAD_TOKEN_SECRET", ""),
		},
		Extract: ExtractConfig{
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			Antiword:      getEnv("ANTIWORD_BIN", "antiword"),
			TesseractLang: getEnv("TESSERACT_LANG", "por"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
		},
		Model: ModelConfig{
			BaseURL:     getEnv("MODEL_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("MODEL_API_KEY", os.Getenv("OPENAI_API_KEY")),
			Name:        getEnv("MODEL_NAME", "gpt-4o-mini"),
			Temperature: getEnvAsFloat("MODEL_TEMPERATURE", 0.7),
			Timeout:     getEnvAsDuration("MODEL_TIMEOUT", 2*time.Minute),
		},
	}
}

// IsDevelopment reports whether the development-only fallbacks are live.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return ConfigError("DB_URL is required")
	}
	if c.Server.HTTPAddr == "" {
		return ConfigError("HTTP_ADDR is required")
	}
	if !c.IsDevelopment() {
		if c.Storage.TokenSecret == "" {
			return ConfigError("UPLOAD_TOKEN_SECRET is required outside development")
		}
		hasMinio := c.Storage.MinioEndpoint != "" && c.Storage.MinioAccessKey != "" && c.Storage.MinioSecretKey != ""
		hasSupabase := c.Storage.SupabaseURL != "" && c.Storage.SupabaseServiceKey != ""
		if !hasMinio && !hasSupabase {
			return ConfigError("configure STORAGE_ENDPOINT/STORAGE_ACCESS_KEY/STORAGE_SECRET_KEY or SUPABASE_URL/SUPABASE_SERVICE_KEY")
		}
		if c.Model.APIKey == "" {
			return ConfigError("MODEL_API_KEY is required outside development")
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
