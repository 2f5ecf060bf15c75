package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("AUTH_PROVIDER", "jwt")
}

func TestLoad_JWTSecretOutsideDevelopment(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", DevJWTSecret)
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cr3t-from-vault")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t-from-vault", cfg.JWTSecret)
}

func TestLoad_DevelopmentFillsSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvironmentDefaultsToProduction(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("ENVIRONMENT"))
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET is required")

	t.Setenv("JWT_SECRET", "another-private-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, cfg.IsDevelopment())
}

func TestValidate_FirebaseAuthIgnoresJWTSecret(t *testing.T) {
	cfg := &Config{
		Environment:     "production",
		StoreDriver:     "mongo",
		MongoURI:        "mongodb://localhost:27017",
		StorageDriver:   "local",
		UploadDir:       "./uploads",
		MaxUploadSize:   1024,
		AuthProvider:    "firebase",
		FirebaseProject: "demo",
		JWTSecret:       DevJWTSecret,
	}
	assert.NoError(t, cfg.Validate())
}

func TestGoogleClientOptions(t *testing.T) {
	cfg := &Config{}
	opts, err := cfg.GoogleClientOptions()
	require.NoError(t, err)
	assert.Empty(t, opts)

	cfg = &Config{FirebaseServiceAccountJSON: `{"type":"service_account"}`}
	opts, err = cfg.GoogleClientOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	cfg = &Config{FirebaseServiceAccountPath: filepath.Join(t.TempDir(), "missing.json")}
	_, err = cfg.GoogleClientOptions()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	cfg = &Config{FirebaseServiceAccountPath: path}
	opts, err = cfg.GoogleClientOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}
