package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalSymlinks resolves symlinks for path comparison (macOS /var -> /private/var).
func evalSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

// newManifestRoot creates a directory holding services/ and environments/.
func newManifestRoot(t *testing.T) string {
	t.Helper()
	root := evalSymlinks(t, t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(root, "services", "billing"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "environments"), 0o755))
	return root
}

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvManifestDir, EnvVaultAddr, EnvVaultToken, EnvVaultNamespace,
		EnvVaultMount, EnvVaultKVVersion, EnvSecretsFile,
		EnvSlackHookURL, EnvSlackChannel, EnvSlackName,
	} {
		t.Setenv(key, "")
	}
}

func TestFindRoot(t *testing.T) {
	t.Run("finds root from nested directory", func(t *testing.T) {
		root := newManifestRoot(t)
		nested := filepath.Join(root, "services", "billing")

		got, err := FindRoot(nested)
		require.NoError(t, err)
		assert.Equal(t, root, got)
	})

	t.Run("requires both directories", func(t *testing.T) {
		dir := evalSymlinks(t, t.TempDir())
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "services"), 0o755))

		_, err := FindRoot(dir)
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Run("explicit root wins", func(t *testing.T) {
		clearEnv(t)
		root := newManifestRoot(t)
		t.Setenv(EnvManifestDir, "/does/not/exist")

		cfg, err := Load(root)
		require.NoError(t, err)
		assert.Equal(t, root, cfg.Root)
		assert.Equal(t, filepath.Join(root, "services"), cfg.ServicesDir())
		assert.Equal(t, filepath.Join(root, "environments"), cfg.EnvironmentsDir())
	})

	t.Run("root from environment", func(t *testing.T) {
		clearEnv(t)
		root := newManifestRoot(t)
		t.Setenv(EnvManifestDir, root)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, root, cfg.Root)
	})

	t.Run("root from working directory", func(t *testing.T) {
		clearEnv(t)
		root := newManifestRoot(t)

		originalWd, err := os.Getwd()
		require.NoError(t, err)
		defer os.Chdir(originalWd)
		require.NoError(t, os.Chdir(filepath.Join(root, "services", "billing")))

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, root, cfg.Root)
	})

	t.Run("missing root", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("reads secret store and slack settings", func(t *testing.T) {
		clearEnv(t)
		root := newManifestRoot(t)
		t.Setenv(EnvVaultAddr, "https://vault.example.com")
		t.Setenv(EnvVaultToken, "s.token")
		t.Setenv(EnvVaultNamespace, "platform")
		t.Setenv(EnvVaultMount, "kv")
		t.Setenv(EnvVaultKVVersion, "1")
		t.Setenv(EnvSecretsFile, "/etc/berth/secrets.enc.yaml")
		t.Setenv(EnvSlackHookURL, "https://hooks.example.com/x")
		t.Setenv(EnvSlackChannel, "#deploys")
		t.Setenv(EnvSlackName, "shipbot")

		cfg, err := Load(root)
		require.NoError(t, err)

		assert.True(t, cfg.HasVault())
		assert.Equal(t, "https://vault.example.com", cfg.Vault.Address)
		assert.Equal(t, "s.token", cfg.Vault.Token)
		assert.Equal(t, "platform", cfg.Vault.Namespace)
		assert.Equal(t, "kv", cfg.Vault.Mount)
		assert.Equal(t, 1, cfg.Vault.KVVersion)
		assert.Equal(t, "/etc/berth/secrets.enc.yaml", cfg.SecretsFile)
		assert.Equal(t, "https://hooks.example.com/x", cfg.Slack.HookURL)
		assert.Equal(t, "#deploys", cfg.Slack.Channel)
		assert.Equal(t, "shipbot", cfg.Slack.Username)
	})

	t.Run("bad kv version", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvVaultKVVersion, "two")

		_, err := Load(newManifestRoot(t))
		assert.Error(t, err)
	})

	t.Run("no vault by default", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load(newManifestRoot(t))
		require.NoError(t, err)
		assert.False(t, cfg.HasVault())
	})
}
