package secret

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrSecretRead indicates the store could not return a placeholder's value.
	ErrSecretRead = errors.New("secret read failed")

	// ErrNotFound is returned by stores when nothing exists at a path.
	ErrNotFound = errors.New("secret not found")

	// ErrDenied is returned by stores when access to a path is refused.
	ErrDenied = errors.New("secret access denied")
)

// Store reads secret values by path.
// Implementations report missing paths with ErrNotFound and refused
// access with ErrDenied.
type Store interface {
	Read(ctx context.Context, path string) (string, error)
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, path string) (string, error)

// Read calls f.
func (f StoreFunc) Read(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Path builds the store path for an env key: {region}/{name}/{key}.
func Path(region, name, key string) string {
	return region + "/" + name + "/" + key
}

// Resolve returns a copy of env with every placeholder replaced.
//
// VaultRef values are read from store at Path(region, name, key).
// KubeSecretRef values become literal cluster secret names. The first
// failing read aborts resolution and no partial map is returned.
func Resolve(ctx context.Context, store Store, region, name string, env map[string]Value) (map[string]Value, error) {
	if store == nil {
		return nil, errors.New("resolve secrets: nil store")
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]Value, len(env))
	for _, key := range keys {
		v := env[key]
		switch v.Kind {
		case VaultRef:
			path := Path(region, name, key)
			s, err := store.Read(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("%w at %s: %w", ErrSecretRead, path, err)
			}
			out[key] = Lit(s)
		case KubeSecretRef:
			ref := key
			if v.Subkey != "" {
				ref = v.Subkey
			}
			out[key] = Lit(KubeSecretName(ref))
		default:
			out[key] = v
		}
	}

	return out, nil
}
