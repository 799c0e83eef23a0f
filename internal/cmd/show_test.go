package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/berth/internal/manifest"
)

func TestShowCommand(t *testing.T) {
	isolateEnv(t)
	root := newManifestRoot(t)

	output, err := executeCmd(t, "show", "billing", "-r", "prod-us", "--root", root)
	require.NoError(t, err)

	assert.Contains(t, output, "# billing in prod-us (secrets skipped)\n")
	assert.Contains(t, output, "DB_PASS: IN_VAULT")
	assert.Contains(t, output, "LOG_LEVEL: warn")
	assert.Contains(t, output, "min: 2")
	assert.Contains(t, output, "port: 8080")
}

func TestShowCommand_RegionFromEnvironment(t *testing.T) {
	isolateEnv(t)
	root := newManifestRoot(t)
	t.Setenv("BERTH_MANIFEST_DIR", root)

	output, err := executeCmd(t, "show", "billing", "-r", "dev-uk")
	require.NoError(t, err)

	assert.Contains(t, output, "LOG_LEVEL: debug")
	assert.NotContains(t, output, "replicas:")
}

func TestShowCommand_RequiresRegion(t *testing.T) {
	isolateEnv(t)
	root := newManifestRoot(t)

	_, err := executeCmd(t, "show", "billing", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"region"`)
}

func TestShowCommand_UnknownService(t *testing.T) {
	isolateEnv(t)
	root := newManifestRoot(t)

	_, err := executeCmd(t, "show", "payments", "-r", "prod-us", "--root", root)
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrServiceNotFound)
}

func TestShowCommand_Secrets(t *testing.T) {
	t.Run("resolves from vault", func(t *testing.T) {
		isolateEnv(t)
		root := newManifestRoot(t)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/secret/data/prod-us/billing/DB_PASS", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"data":{"value":"s3cr3t"}}}`))
		}))
		t.Cleanup(server.Close)

		t.Setenv("VAULT_ADDR", server.URL)
		t.Setenv("VAULT_TOKEN", "test-token")

		output, err := executeCmd(t, "show", "billing", "-r", "prod-us", "--secrets", "--root", root)
		require.NoError(t, err)

		assert.Contains(t, output, "(secrets resolved)")
		assert.Contains(t, output, "DB_PASS: s3cr3t")
		assert.NotContains(t, output, "IN_VAULT")
	})

	t.Run("no store configured", func(t *testing.T) {
		isolateEnv(t)
		root := newManifestRoot(t)

		_, err := executeCmd(t, "show", "billing", "-r", "prod-us", "--secrets", "--root", root)
		require.Error(t, err)
		assert.ErrorIs(t, err, errNoSecretStore)
	})
}
