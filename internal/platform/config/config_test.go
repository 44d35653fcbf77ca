package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSQLEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "sql")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setSQLEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, BackendSQL, cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.CEPCacheTTL)
	assert.Equal(t, 8*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 4, cfg.BackfillWorkers)
	assert.False(t, cfg.ViaCEPMock)
}

func TestLoadOverrides(t *testing.T) {
	setSQLEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("VIACEP_MOCK", "true")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("BACKFILL_WORKERS", "8")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, ,https://admin.example.org")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.ViaCEPMock)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 8, cfg.BackfillWorkers)
	assert.Equal(t, []string{"http://localhost:5173", "https://admin.example.org"}, cfg.Origins())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bool", key: "VIACEP_MOCK", val: "maybe"},
		{name: "duration", key: "JWT_TTL", val: "soon"},
		{name: "int", key: "BACKFILL_WORKERS", val: "many"},
		{name: "backend", key: "STORE_BACKEND", val: "mongo"},
		{name: "driver", key: "DB_DRIVER", val: "mysql"},
		{name: "missing secret", key: "JWT_SECRET", val: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSQLEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateFirestoreNeedsCredentials(t *testing.T) {
	cfg := Config{Port: "8080", JWTSecret: "s", StoreBackend: BackendFirestore, FirebaseProjectID: "p", BackfillWorkers: 1}
	assert.Error(t, cfg.Validate())

	cfg.FirebaseCredsBase64 = base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`))
	require.NoError(t, cfg.Validate())

	creds, source, err := cfg.FirebaseCredentialsJSON()
	require.NoError(t, err)
	assert.Equal(t, "base64", source)
	assert.JSONEq(t, `{"type":"service_account"}`, string(creds))
}

func TestValidateFirestoreEmulatorSkipsCredentials(t *testing.T) {
	cfg := Config{Port: "8080", JWTSecret: "s", StoreBackend: BackendFirestore, FirebaseProjectID: "p", BackfillWorkers: 1}
	cfg.FirestoreEmulator = "localhost:8081"
	assert.NoError(t, cfg.Validate())
}

func TestValidateMemoryBackend(t *testing.T) {
	cfg := Config{Port: "8080", JWTSecret: "s", StoreBackend: BackendMemory, BackfillWorkers: 1}
	assert.NoError(t, cfg.Validate())
}
