package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag on cmd and its children to its default so
// values set by one test don't leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCmd runs the root command with args and returns everything written
// to stdout and stderr.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	buf := new(bytes.Buffer)
	// Args must be non-nil or cobra falls back to os.Args.
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	err := rootCmd.Execute()
	return buf.String(), err
}

// writeTree creates files under dir, making parent directories as needed.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// newManifestRoot builds a manifest root with two services and two regions.
// billing is valid everywhere; ledger has an inverted memory bound.
func newManifestRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"environments/prod-us.yml": "env:\n  LOG_LEVEL: warn\n",
		"environments/dev-uk.yml":  "env:\n  LOG_LEVEL: debug\n",
		"services/billing/manifest.yml": `name: billing
image:
  repository: registry.example.com/billing
  tag: "1.4.2"
regions: [prod-us, dev-uk]
ports: [8080]
env:
  DB_PASS: IN_VAULT
resources:
  requests: {cpu: 250m, memory: 256Mi}
  limits: {cpu: "1", memory: 512Mi}
health:
  uri: /healthz
  wait: 10
configs:
  mount: /etc/billing/
  files:
    - name: app.conf.tmpl
`,
		"services/billing/prod-us.yml":   "replicas: {min: 2, max: 4}\n",
		"services/billing/app.conf.tmpl": "service={{ .Name }}\nregion={{ .Region }}\nlog={{ index .Env \"LOG_LEVEL\" }}\n",
		"services/ledger/manifest.yml": `name: ledger
regions: [prod-us]
ports: [9090]
resources:
  requests: {cpu: 100m, memory: 1Gi}
  limits: {cpu: 200m, memory: 512Mi}
`,
	})
	return root
}

// isolateEnv clears every variable config.Load reads.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BERTH_MANIFEST_DIR",
		"BERTH_SECRETS_FILE",
		"VAULT_ADDR",
		"VAULT_TOKEN",
		"VAULT_NAMESPACE",
		"BERTH_VAULT_MOUNT",
		"BERTH_VAULT_KV_VERSION",
		"SLACK_BERTH_HOOK_URL",
		"SLACK_BERTH_CHANNEL",
		"SLACK_BERTH_NAME",
	} {
		t.Setenv(key, "")
	}
}
