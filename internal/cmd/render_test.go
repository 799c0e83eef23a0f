package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/berth/internal/lock"
	"github.com/cameronsjo/berth/internal/manifest"
)

func TestRenderCommand_Stdout(t *testing.T) {
	isolateEnv(t)
	root := newManifestRoot(t)

	output, err := executeCmd(t, "render", "billing", "-r", "prod-us", "--root", root)
	require.NoError(t, err)

	assert.Equal(t, "--- app.conf ---\nservice=billing\nregion=prod-us\nlog=warn\n", output)
}

func TestRenderCommand_OutputDir(t *testing.T) {
	isolateEnv(t)
	root := newManifestRoot(t)
	out := filepath.Join(t.TempDir(), "rendered")

	output, err := executeCmd(t, "render", "billing", "-r", "dev-uk", "-o", out, "--root", root)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "app.conf"))
	require.NoError(t, err)
	assert.Equal(t, "service=billing\nregion=dev-uk\nlog=debug\n", string(data))
	assert.Contains(t, output, "✓ "+filepath.Join(out, "app.conf"))

	lockPath := lock.New(root, "render").Path()
	assert.DirExists(t, filepath.Dir(lockPath))
	assert.NoFileExists(t, lockPath)
}

func TestRenderCommand_TemplateError(t *testing.T) {
	isolateEnv(t)
	root := newManifestRoot(t)
	writeTree(t, root, map[string]string{
		"services/billing/app.conf.tmpl": "{{ .Missing }}\n",
	})

	_, err := executeCmd(t, "render", "billing", "-r", "prod-us", "--root", root)
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrTemplateRender)
}

func TestRenderCommand_DestOutsideOutputDir(t *testing.T) {
	isolateEnv(t)
	root := newManifestRoot(t)
	writeTree(t, root, map[string]string{
		"services/web/manifest.yml": `name: web
regions: [prod-us]
configs:
  mount: /etc/web/
  files:
    - name: app.conf.tmpl
      dest: ../escape.conf
`,
		"services/web/app.conf.tmpl": "x\n",
	})
	out := filepath.Join(t.TempDir(), "rendered")

	_, err := executeCmd(t, "render", "web", "-r", "prod-us", "-o", out, "--root", root)
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrPathEscape)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(out), "escape.conf"))
}
