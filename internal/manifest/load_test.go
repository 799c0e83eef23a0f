package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/berth/internal/secret"
)

func TestLayout(t *testing.T) {
	l := Layout{Root: "/m"}

	assert.Equal(t, "/m/services/billing", l.ServiceDir("billing"))
	assert.Equal(t, "/m/services/billing/manifest.yml", l.Descriptor("billing"))
	assert.Equal(t, "/m/services/billing/prod-us.yml", l.ServiceOverride("billing", "prod-us"))
	assert.Equal(t, "/m/environments/prod-us.yml", l.RegionDefaults("prod-us"))
}

func TestLoad_IgnoresUnknownFields(t *testing.T) {
	fs := newTestFS(t, map[string]string{
		"services/billing/manifest.yml": "name: billing\nchart: legacy\nports: [80]\n",
	})

	m, err := Load(fs, Layout{Root: testRoot}, "billing")
	require.NoError(t, err)
	assert.Equal(t, "billing", m.Name)
	assert.Equal(t, []uint32{80}, m.Ports)
}

func TestLoadOverride_Missing(t *testing.T) {
	fs := newTestFS(t, map[string]string{
		"services/billing/manifest.yml": "name: billing\n",
	})

	m, ok, err := loadOverride(fs, Layout{Root: testRoot}.RegionDefaults("prod-us"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)
}

func TestMarshal(t *testing.T) {
	m := &Manifest{
		Name: "billing",
		Env: map[string]secret.Value{
			"Z_LAST":  secret.Lit("z"),
			"API_KEY": {Kind: secret.KubeSecretRef},
			"DB_PASS": {Kind: secret.VaultRef},
		},
		Ports:     []uint32{8080},
		Path:      "/somewhere/manifest.yml",
		Region:    "prod-us",
		Namespace: "prod",
		Location:  "us",
	}

	data, err := Marshal(m)
	require.NoError(t, err)

	want := `name: billing
env:
    API_KEY: IN_KUBE_SECRETS
    DB_PASS: IN_VAULT
    Z_LAST: z
ports:
    - 8080
`
	assert.Equal(t, want, string(data))
}

func TestManifest_Write(t *testing.T) {
	fs := newTestFS(t, map[string]string{
		"services/billing/manifest.yml": "name: billing\nenv:\n  DB_PASS: IN_VAULT\n",
	})
	layout := Layout{Root: testRoot}

	m, err := Load(fs, layout, "billing")
	require.NoError(t, err)
	m.Regions = []string{"prod-us"}
	require.NoError(t, m.Write(fs))

	reloaded, err := Load(fs, layout, "billing")
	require.NoError(t, err)
	assert.Equal(t, []string{"prod-us"}, reloaded.Regions)
	assert.Equal(t, secret.Value{Kind: secret.VaultRef}, reloaded.Env["DB_PASS"])

	assert.Error(t, (&Manifest{Name: "orphan"}).Write(fs))
}

func TestInit(t *testing.T) {
	t.Run("creates descriptor", func(t *testing.T) {
		fs := newTestFS(t, map[string]string{"environments/prod-us.yml": ""})
		layout := Layout{Root: testRoot}

		m, err := Init(fs, layout, "ledger")
		require.NoError(t, err)
		assert.Equal(t, layout.Descriptor("ledger"), m.Path)

		data, err := fs.ReadFile(layout.Descriptor("ledger"))
		require.NoError(t, err)
		assert.Equal(t, "name: ledger\n", string(data))
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		fs := newTestFS(t, map[string]string{
			"services/billing/manifest.yml": "name: billing\nports: [80]\n",
		})
		layout := Layout{Root: testRoot}

		_, err := Init(fs, layout, "billing")
		assert.ErrorIs(t, err, ErrDescriptorExists)

		data, err := fs.ReadFile(layout.Descriptor("billing"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "ports")
	})

	t.Run("requires a name", func(t *testing.T) {
		fs := newTestFS(t, map[string]string{})
		_, err := Init(fs, Layout{Root: testRoot}, "")
		assert.ErrorIs(t, err, ErrEmptyName)
	})
}
