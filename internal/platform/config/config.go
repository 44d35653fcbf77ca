package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendSQL       = "sql"
	BackendMemory    = "memory"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port                string
	GinMode             string
	LogMode             string
	StoreBackend        string
	FirebaseProjectID   string
	FirebaseCredsBase64 string
	FirebaseCredsFile   string
	FirestoreEmulator   string
	DBDriver            string
	DBDSN               string
	RedisURL            string
	CEPCacheTTL         time.Duration
	ViaCEPBaseURL       string
	ViaCEPMock          bool
	JWTSecret           string
	JWTTTL              time.Duration
	AllowedOrigins      string
	BackfillWorkers     int
}

// Load reads environment variables into a Config with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "release"),
		LogMode:             getEnv("LOG_MODE", "prod"),
		StoreBackend:        strings.ToLower(getEnv("STORE_BACKEND", BackendFirestore)),
		FirebaseProjectID:   strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")),
		FirebaseCredsBase64: strings.TrimSpace(os.Getenv("FIREBASE_CREDS_BASE64")),
		FirebaseCredsFile:   strings.TrimSpace(os.Getenv("FIREBASE_CREDS_FILE")),
		FirestoreEmulator:   strings.TrimSpace(os.Getenv("FIRESTORE_EMULATOR_HOST")),
		DBDriver:            strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:               getEnv("DB_DSN", "visitantes.db"),
		RedisURL:            strings.TrimSpace(os.Getenv("REDIS_URL")),
		ViaCEPBaseURL:       strings.TrimSpace(os.Getenv("VIACEP_BASE_URL")),
		JWTSecret:           strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AllowedOrigins:      strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
	}

	mock, err := parseBoolEnv("VIACEP_MOCK", false)
	if err != nil {
		return Config{}, fmt.Errorf("parse VIACEP_MOCK: %w", err)
	}
	cfg.ViaCEPMock = mock

	if cfg.CEPCacheTTL, err = parseDurationEnv("CEP_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, fmt.Errorf("parse CEP_CACHE_TTL: %w", err)
	}
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", 8*time.Hour); err != nil {
		return Config{}, fmt.Errorf("parse JWT_TTL: %w", err)
	}
	if cfg.BackfillWorkers, err = parseIntEnv("BACKFILL_WORKERS", 4); err != nil {
		return Config{}, fmt.Errorf("parse BACKFILL_WORKERS: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.StoreBackend {
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required")
		}
		if c.FirestoreEmulator == "" && c.FirebaseCredsBase64 == "" && c.FirebaseCredsFile == "" {
			return errors.New("provide FIREBASE_CREDS_BASE64 or FIREBASE_CREDS_FILE for Firestore auth")
		}
	case BackendSQL:
		if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
			return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
		}
		if c.DBDSN == "" {
			return errors.New("DB_DSN is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %s, %s or %s, got %q", BackendFirestore, BackendSQL, BackendMemory, c.StoreBackend)
	}
	if c.BackfillWorkers <= 0 {
		return errors.New("BACKFILL_WORKERS must be positive")
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS into a clean list.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if t := strings.TrimSpace(o); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// FirebaseCredentialsJSON returns the service account JSON bytes and the source used.
func (c Config) FirebaseCredentialsJSON() ([]byte, string, error) {
	if c.FirebaseCredsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.FirebaseCredsBase64)
		if err != nil {
			return nil, "base64", fmt.Errorf("decode FIREBASE_CREDS_BASE64: %w", err)
		}
		return decoded, "base64", nil
	}
	if c.FirebaseCredsFile != "" {
		data, err := os.ReadFile(c.FirebaseCredsFile)
		if err != nil {
			return nil, "file", fmt.Errorf("read FIREBASE_CREDS_FILE: %w", err)
		}
		return data, "file", nil
	}
	return nil, "", errors.New("no firebase credentials found")
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func parseBoolEnv(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseDurationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(val)
}

func parseIntEnv(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}
