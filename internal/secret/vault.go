package secret

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	vapi "github.com/hashicorp/vault/api"
)

// DefaultVaultMount is the secrets engine mount used when none is configured.
const DefaultVaultMount = "secret"

// VaultConfig configures a VaultStore.
type VaultConfig struct {
	// Address is the Vault server URL.
	Address string

	// Token authenticates requests.
	Token string

	// Namespace is the Vault Enterprise namespace, if any.
	Namespace string

	// Mount is the KV secrets engine mount (default "secret").
	Mount string

	// KVVersion selects the KV engine API: 1 or 2 (default 2).
	KVVersion int

	// Timeout bounds each HTTP request. Zero keeps the client default.
	Timeout time.Duration
}

// VaultStore reads secrets from a HashiCorp Vault KV engine.
// Every secret is expected to hold its payload in a "value" field.
type VaultStore struct {
	client    *vapi.Client
	mount     string
	kvVersion int
}

// NewVaultStore creates a VaultStore. Client retries are disabled so a
// read is a single attempt; callers own retry policy.
func NewVaultStore(cfg VaultConfig) (*VaultStore, error) {
	if cfg.Address == "" {
		return nil, errors.New("vault: address is required")
	}

	vcfg := vapi.DefaultConfig()
	if vcfg.Error != nil {
		return nil, fmt.Errorf("vault: default config: %w", vcfg.Error)
	}
	vcfg.Address = cfg.Address
	vcfg.MaxRetries = 0
	if cfg.Timeout > 0 {
		vcfg.Timeout = cfg.Timeout
	}

	client, err := vapi.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("vault: new client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}
	if ns := strings.TrimSpace(cfg.Namespace); ns != "" {
		client.SetNamespace(ns)
	}

	mount := strings.Trim(cfg.Mount, "/")
	if mount == "" {
		mount = DefaultVaultMount
	}
	kv := cfg.KVVersion
	if kv == 0 {
		kv = 2
	}
	if kv != 1 && kv != 2 {
		return nil, fmt.Errorf("vault: unsupported KV version %d", kv)
	}

	return &VaultStore{client: client, mount: mount, kvVersion: kv}, nil
}

// Read returns the value stored at path under the configured mount.
func (s *VaultStore) Read(ctx context.Context, path string) (string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return "", errors.New("vault: empty path")
	}

	apiPath := s.mount + "/" + path
	if s.kvVersion == 2 {
		apiPath = s.mount + "/data/" + path
	}

	sec, err := s.client.Logical().ReadWithContext(ctx, apiPath)
	if err != nil {
		var respErr *vapi.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusForbidden {
			return "", fmt.Errorf("vault: %s: %w", apiPath, ErrDenied)
		}
		return "", fmt.Errorf("vault: read %s: %w", apiPath, err)
	}
	if sec == nil || sec.Data == nil {
		return "", fmt.Errorf("vault: %s: %w", apiPath, ErrNotFound)
	}

	data := sec.Data
	if s.kvVersion == 2 {
		inner, ok := sec.Data["data"].(map[string]any)
		if !ok || inner == nil {
			return "", fmt.Errorf("vault: %s: %w", apiPath, ErrNotFound)
		}
		data = inner
	}

	return pickField(data)
}

// pickField returns the "value" field, or the only field when there is one.
func pickField(m map[string]any) (string, error) {
	if v, ok := m["value"]; ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
		return "", errors.New("vault: field \"value\" is not a string")
	}
	if len(m) == 1 {
		for k, v := range m {
			if s, ok := v.(string); ok {
				return s, nil
			}
			return "", fmt.Errorf("vault: field %q is not a string", k)
		}
	}
	return "", errors.New("vault: secret has no \"value\" field")
}
