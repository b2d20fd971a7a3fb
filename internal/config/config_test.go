// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "PORT", "")
	setEnv(t, "STORAGE_MODE", "")
	setEnv(t, "DATA_DIR", filepath.Join(t.TempDir(), "data"))
	setEnv(t, "STATIC_DIR", filepath.Join(t.TempDir(), "static"))
	setEnv(t, "LOG_DIR", filepath.Join(t.TempDir(), "logs"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageModeLocal, cfg.StorageMode)
	assert.True(t, cfg.DebugMode)

	// 路径目录自动创建
	_, statErr := os.Stat(cfg.DataDir)
	assert.NoError(t, statErr)
}

func TestLoadRemoteModeRequiresBaseURL(t *testing.T) {
	setEnv(t, "DATA_DIR", t.TempDir())
	setEnv(t, "STATIC_DIR", t.TempDir())
	setEnv(t, "LOG_DIR", t.TempDir())
	setEnv(t, "STORAGE_MODE", "remote")
	setEnv(t, "REMOTE_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)

	setEnv(t, "REMOTE_BASE_URL", "https://remote.example.com")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageModeRemote, cfg.StorageMode)
	assert.Equal(t, "https://remote.example.com", cfg.RemoteBaseURL)
}

func TestLoadUnknownModeFallsBackToLocal(t *testing.T) {
	setEnv(t, "DATA_DIR", t.TempDir())
	setEnv(t, "STATIC_DIR", t.TempDir())
	setEnv(t, "LOG_DIR", t.TempDir())
	setEnv(t, "STORAGE_MODE", "s3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageModeLocal, cfg.StorageMode)
}

func TestGetEnvBool(t *testing.T) {
	setEnv(t, "FLAG_X", "true")
	assert.True(t, getEnvBool("FLAG_X", false))

	setEnv(t, "FLAG_X", "1")
	assert.True(t, getEnvBool("FLAG_X", false))

	setEnv(t, "FLAG_X", "no")
	assert.False(t, getEnvBool("FLAG_X", true))

	setEnv(t, "FLAG_X", "")
	assert.True(t, getEnvBool("FLAG_X", true))
}

func TestInitConfigPersistsAndUpdates(t *testing.T) {
	dataDir := t.TempDir()
	setEnv(t, "DATA_DIR", dataDir)
	setEnv(t, "STATIC_DIR", t.TempDir())
	setEnv(t, "LOG_DIR", t.TempDir())
	setEnv(t, "STORAGE_MODE", "local")
	setEnv(t, "REMOTE_BASE_URL", "")

	require.NoError(t, InitConfig(dataDir))
	_, statErr := os.Stat(filepath.Join(dataDir, "config.json"))
	require.NoError(t, statErr)

	cfg := GetCurrentConfig()
	assert.Equal(t, StorageModeLocal, cfg.StorageMode)

	// 切换到远程模式并落盘
	require.NoError(t, UpdateStorageConfig(StorageModeRemote, "https://remote.example.com"))
	cfg = GetCurrentConfig()
	assert.Equal(t, StorageModeRemote, cfg.StorageMode)
	assert.Equal(t, "https://remote.example.com", cfg.RemoteBaseURL)

	// 返回的是副本，改动不影响内部状态
	cfg.StorageMode = "tampered"
	assert.Equal(t, StorageModeRemote, GetCurrentConfig().StorageMode)

	// 非法模式被拒绝
	assert.Error(t, UpdateStorageConfig("s3", ""))
	assert.Error(t, UpdateStorageConfig(StorageModeRemote, ""))

	// 重新初始化时保留已保存的存储设置
	require.NoError(t, InitConfig(dataDir))
	assert.Equal(t, StorageModeRemote, GetCurrentConfig().StorageMode)
}
