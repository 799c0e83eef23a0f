package secret

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/getsops/sops/v3/decrypt"
	"gopkg.in/yaml.v3"
)

// SOPSStore serves secrets from a SOPS-encrypted YAML file laid out as
// nested maps, so "prod-us/billing/DB_PASS" is read from:
//
//	prod-us:
//	  billing:
//	    DB_PASS: s3cr3t
//
// The file is decrypted once, on first read.
type SOPSStore struct {
	path    string
	decrypt func(path, format string) ([]byte, error)

	once sync.Once
	data map[string]any
	err  error
}

// NewSOPSStore creates a store backed by the encrypted file at path.
func NewSOPSStore(path string) *SOPSStore {
	return &SOPSStore{path: path, decrypt: decrypt.File}
}

// Read returns the string at the slash-separated path.
func (s *SOPSStore) Read(_ context.Context, path string) (string, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return "", s.err
	}

	var node any = s.data
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", fmt.Errorf("sops: %s: %w", path, ErrNotFound)
		}
		node, ok = m[seg]
		if !ok {
			return "", fmt.Errorf("sops: %s: %w", path, ErrNotFound)
		}
	}

	switch v := node.(type) {
	case string:
		return v, nil
	case map[string]any, []any, nil:
		return "", fmt.Errorf("sops: %s is not a scalar: %w", path, ErrNotFound)
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func (s *SOPSStore) load() {
	plain, err := s.decrypt(s.path, "yaml")
	if err != nil {
		s.err = fmt.Errorf("sops decrypt failed for %s: %w", s.path, err)
		return
	}

	var data map[string]any
	if err := yaml.Unmarshal(plain, &data); err != nil {
		s.err = fmt.Errorf("failed to parse decrypted YAML from %s: %w", s.path, err)
		return
	}
	if data == nil {
		data = make(map[string]any)
	}
	s.data = data
}
