package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prabhas.dev/medication-box-service/pkg/common"
	_ "prabhas.dev/medication-box-service/pkg/testing"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv(common.EnvKeyMedboxDBType, DBTypeMemory)
	t.Setenv(common.EnvKeyMedboxAdminUsername, "admin")
	t.Setenv(common.EnvKeyMedboxAdminPassword, "secret")
	t.Setenv(common.EnvKeyMedboxHttpHostPort, "")
	t.Setenv(common.EnvKeyMedboxDeviceRate, "")
	t.Setenv(common.EnvKeyMedboxDeviceBurst, "")
	t.Setenv(common.EnvKeyMedboxCacheTTLSeconds, "")
	t.Setenv(common.EnvKeyMedboxVapidPublicKey, "")
	t.Setenv(common.EnvKeyMedboxVapidPrivateKey, "")
	t.Setenv(common.EnvKeyMedboxNotifyWorkers, "")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DBTypeMemory, cfg.DBType)
	assert.Equal(t, ":3000", cfg.HTTPHostPort)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "secret", cfg.AdminPassword)
	assert.Equal(t, 5.0, cfg.DeviceRate)
	assert.Equal(t, 10, cfg.DeviceBurst)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.Equal(t, 1, cfg.NotifyWorkers)
	assert.False(t, cfg.PushEnabled())
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(common.EnvKeyMedboxHttpHostPort, ":8080")
	t.Setenv(common.EnvKeyMedboxDeviceRate, "2.5")
	t.Setenv(common.EnvKeyMedboxDeviceBurst, "3")
	t.Setenv(common.EnvKeyMedboxCacheTTLSeconds, "2")
	t.Setenv(common.EnvKeyMedboxNotifyWorkers, "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPHostPort)
	assert.Equal(t, 2.5, cfg.DeviceRate)
	assert.Equal(t, 3, cfg.DeviceBurst)
	assert.Equal(t, 2*time.Second, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.NotifyWorkers)
}

func TestLoadFailsFast(t *testing.T) {
	t.Run("missing db type", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv(common.EnvKeyMedboxDBType, "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown db type", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv(common.EnvKeyMedboxDBType, "cloud")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("missing admin credentials", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv(common.EnvKeyMedboxAdminPassword, "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid device rate", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv(common.EnvKeyMedboxDeviceRate, "fast")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("half a vapid key pair", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv(common.EnvKeyMedboxVapidPublicKey, "pub-only")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestPushEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(common.EnvKeyMedboxVapidPublicKey, "pub")
	t.Setenv(common.EnvKeyMedboxVapidPrivateKey, "priv")
	t.Setenv(common.EnvKeyMedboxPushSubject, "mailto:caregiver@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.PushEnabled())
	assert.Equal(t, "mailto:caregiver@example.com", cfg.PushSubject)
}
