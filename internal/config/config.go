// Package config handles manifest root discovery and runtime configuration.
//
// Configuration is read from the environment once, by the CLI, and passed
// down explicitly. Nothing below this package reads the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cameronsjo/berth/internal/alert"
	"github.com/cameronsjo/berth/internal/secret"
)

// Environment variables read by Load.
const (
	EnvManifestDir    = "BERTH_MANIFEST_DIR"
	EnvVaultAddr      = "VAULT_ADDR"
	EnvVaultToken     = "VAULT_TOKEN"
	EnvVaultNamespace = "VAULT_NAMESPACE"
	EnvVaultMount     = "BERTH_VAULT_MOUNT"
	EnvVaultKVVersion = "BERTH_VAULT_KV_VERSION"
	EnvSecretsFile    = "BERTH_SECRETS_FILE"
	EnvSlackHookURL   = "SLACK_BERTH_HOOK_URL"
	EnvSlackChannel   = "SLACK_BERTH_CHANNEL"
	EnvSlackName      = "SLACK_BERTH_NAME"
)

// Config holds the berth runtime configuration.
type Config struct {
	// Root is the manifest root (contains services/ and environments/).
	Root string

	// Vault configures the Vault secret store. Unused when Address is empty.
	Vault secret.VaultConfig

	// SecretsFile is a SOPS-encrypted secrets file used when Vault is not
	// configured.
	SecretsFile string

	// Slack configures validation notifications.
	Slack alert.SlackConfig
}

// FindRoot searches upward from dir for a manifest root, identified by
// sibling services/ and environments/ directories.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}

	for {
		if isDir(filepath.Join(dir, "services")) && isDir(filepath.Join(dir, "environments")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("manifest root not found (no services/ and environments/ directories)")
}

// Load builds a Config. root wins when set, then BERTH_MANIFEST_DIR, then
// an upward search from the working directory.
func Load(root string) (*Config, error) {
	if root == "" {
		root = os.Getenv(EnvManifestDir)
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		root, err = FindRoot(wd)
		if err != nil {
			return nil, err
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest root: %w", err)
	}
	if !isDir(abs) {
		return nil, fmt.Errorf("manifest root %s is not a directory", abs)
	}

	cfg := &Config{
		Root: abs,
		Vault: secret.VaultConfig{
			Address:   os.Getenv(EnvVaultAddr),
			Token:     os.Getenv(EnvVaultToken),
			Namespace: os.Getenv(EnvVaultNamespace),
			Mount:     os.Getenv(EnvVaultMount),
		},
		SecretsFile: os.Getenv(EnvSecretsFile),
		Slack: alert.SlackConfig{
			HookURL:  os.Getenv(EnvSlackHookURL),
			Channel:  os.Getenv(EnvSlackChannel),
			Username: os.Getenv(EnvSlackName),
		},
	}

	if v := os.Getenv(EnvVaultKVVersion); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", EnvVaultKVVersion, err)
		}
		cfg.Vault.KVVersion = n
	}

	return cfg, nil
}

// ServicesDir returns the path to the services directory.
func (c *Config) ServicesDir() string {
	return filepath.Join(c.Root, "services")
}

// EnvironmentsDir returns the path to the region defaults directory.
func (c *Config) EnvironmentsDir() string {
	return filepath.Join(c.Root, "environments")
}

// HasVault reports whether a Vault address is configured.
func (c *Config) HasVault() bool {
	return c.Vault.Address != ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
