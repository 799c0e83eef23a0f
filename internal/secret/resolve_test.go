package secret

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStore serves fixed values and records every path it was asked for.
type mapStore struct {
	values map[string]string
	reads  []string
}

func (m *mapStore) Read(_ context.Context, path string) (string, error) {
	m.reads = append(m.reads, path)
	v, ok := m.values[path]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return v, nil
}

func TestPath(t *testing.T) {
	assert.Equal(t, "prod-us/billing/DB_PASS", Path("prod-us", "billing", "DB_PASS"))
}

func TestResolve(t *testing.T) {
	t.Run("vault placeholder reads the store", func(t *testing.T) {
		store := &mapStore{values: map[string]string{"prod-us/billing/DB_PASS": "s3cr3t"}}
		env := map[string]Value{"DB_PASS": {Kind: VaultRef}}

		got, err := Resolve(context.Background(), store, "prod-us", "billing", env)
		require.NoError(t, err)
		assert.Equal(t, Lit("s3cr3t"), got["DB_PASS"])
		assert.Equal(t, []string{"prod-us/billing/DB_PASS"}, store.reads)
	})

	t.Run("kube secret placeholders derive names", func(t *testing.T) {
		env := map[string]Value{
			"API_KEY": {Kind: KubeSecretRef},
			"TOKEN":   {Kind: KubeSecretRef, Subkey: "SHARED_TOKEN"},
		}

		got, err := Resolve(context.Background(), &mapStore{}, "prod-us", "billing", env)
		require.NoError(t, err)
		assert.Equal(t, Lit("kube-secret-api-key"), got["API_KEY"])
		assert.Equal(t, Lit("kube-secret-shared-token"), got["TOKEN"])
	})

	t.Run("literals pass through and input is untouched", func(t *testing.T) {
		env := map[string]Value{"LOG_LEVEL": Lit("debug"), "PASS": {Kind: VaultRef}}
		store := StoreFunc(func(context.Context, string) (string, error) { return "x", nil })

		got, err := Resolve(context.Background(), store, "dev-uk", "svc", env)
		require.NoError(t, err)
		assert.Equal(t, Lit("debug"), got["LOG_LEVEL"])
		assert.Equal(t, Value{Kind: VaultRef}, env["PASS"])
	})

	t.Run("failed read aborts with the path", func(t *testing.T) {
		store := &mapStore{values: map[string]string{}}
		env := map[string]Value{"A": Lit("1"), "DB_PASS": {Kind: VaultRef}}

		got, err := Resolve(context.Background(), store, "prod-us", "billing", env)
		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrSecretRead)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "prod-us/billing/DB_PASS")
	})

	t.Run("reads happen in key order", func(t *testing.T) {
		store := &mapStore{values: map[string]string{
			"r/n/A": "a", "r/n/B": "b", "r/n/C": "c",
		}}
		env := map[string]Value{"C": {Kind: VaultRef}, "A": {Kind: VaultRef}, "B": {Kind: VaultRef}}

		_, err := Resolve(context.Background(), store, "r", "n", env)
		require.NoError(t, err)
		assert.Equal(t, []string{"r/n/A", "r/n/B", "r/n/C"}, store.reads)
	})

	t.Run("nil store is an error", func(t *testing.T) {
		_, err := Resolve(context.Background(), nil, "r", "n", nil)
		assert.Error(t, err)
	})
}
