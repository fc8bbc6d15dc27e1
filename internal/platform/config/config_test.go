package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"ISSUER_ADMIN_ADDRESS", "ISSUER_DEPLOYER_ADDRESS", "REGISTRY_BACKEND", "CREDVERIFY_ENV", "DEV_OPT_IN_ENABLED", "CALLER_SIGNING_KEY"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendMemory, cfg.Registry.Backend)
	assert.Empty(t, cfg.Issuer.AdminAddress)
	assert.Equal(t, uint64(1001), cfg.Ledger.FirstAssetID)
	assert.True(t, cfg.DevOptInEnabled)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, DevSigningKey, cfg.CallerSigningKey)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_AdminFallsBackToDeployer(t *testing.T) {
	t.Setenv("ISSUER_ADMIN_ADDRESS", "")
	t.Setenv("ISSUER_DEPLOYER_ADDRESS", " DEPLOYER ")

	assert.Equal(t, "DEPLOYER", FromEnv().Issuer.AdminAddress)

	t.Setenv("ISSUER_ADMIN_ADDRESS", "ADMIN")
	assert.Equal(t, "ADMIN", FromEnv().Issuer.AdminAddress)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("REGISTRY_BACKEND", "Postgres")
	t.Setenv("CREDVERIFY_ENV", "prod")
	t.Setenv("LEDGER_FAILURE_THRESHOLD", "2")
	t.Setenv("REDIS_DIAL_TIMEOUT", "750ms")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, BackendPostgres, cfg.Registry.Backend)
	assert.False(t, cfg.IsDev())
	assert.False(t, cfg.DevOptInEnabled)
	assert.Equal(t, 2, cfg.Ledger.FailureThreshold)
	assert.Equal(t, 750*time.Millisecond, cfg.Redis.DialTimeout)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestFromEnv_SigningKeyOutsideDev(t *testing.T) {
	t.Setenv("CREDVERIFY_ENV", "production")

	t.Run("missing key is not replaced by the dev key", func(t *testing.T) {
		t.Setenv("CALLER_SIGNING_KEY", "")

		cfg := FromEnv()

		assert.False(t, cfg.IsDev())
		assert.Empty(t, cfg.CallerSigningKey)
		require.ErrorIs(t, cfg.Validate(), ErrSigningKeyRequired)
	})

	t.Run("explicit dev key is refused", func(t *testing.T) {
		t.Setenv("CALLER_SIGNING_KEY", DevSigningKey)

		require.ErrorIs(t, FromEnv().Validate(), ErrSigningKeyRequired)
	})

	t.Run("configured key passes", func(t *testing.T) {
		t.Setenv("CALLER_SIGNING_KEY", "a-real-deployment-secret")

		cfg := FromEnv()

		assert.Equal(t, "a-real-deployment-secret", cfg.CallerSigningKey)
		assert.NoError(t, cfg.Validate())
	})
}
