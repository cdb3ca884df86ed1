package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distfs/distfs/pkg/naming"
)

func TestLoadNamingDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("bind_host: \"\"\n"), 0644))

	cfg, err := LoadNaming(configPath)
	require.NoError(t, err)

	assert.Equal(t, naming.ServicePort, cfg.ServicePort)
	assert.Equal(t, naming.RegistrationPort, cfg.RegistrationPort)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Zero(t, cfg.MaxConnRate)
}

func TestLoadNamingMaxConnRate(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("max_conn_rate: 50\n"), 0644))

	cfg, err := LoadNaming(configPath)
	require.NoError(t, err)
	assert.EqualValues(t, 50, cfg.MaxConnRate)
}

func TestLoadNamingMissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := LoadNaming(filepath.Join(tmpDir, "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, naming.ServicePort, cfg.ServicePort)
}

func TestLoadStorageRequiresNamingAddressAndRoot(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("advertise_host: 127.0.0.1\n"), 0644))

	_, err := LoadStorage(configPath)
	assert.Error(t, err, "local_root and naming_address are required")
}

func TestLoadStorageDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
local_root: /tmp/distfs-data
naming_address: 127.0.0.1:8901
advertise_host: 127.0.0.1
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := LoadStorage(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/distfs-data", cfg.LocalRoot)
	assert.Equal(t, "127.0.0.1:8901", cfg.NamingAddress)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Zero(t, cfg.DataPort)
}

func TestLoadStorageAdvertiseHostFallsBackToBindHost(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
local_root: /tmp/distfs-data
naming_address: 127.0.0.1:8901
bind_host: 10.0.0.5
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := LoadStorage(configPath)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.AdvertiseHost)
}
