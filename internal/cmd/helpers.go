package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cameronsjo/berth/internal/config"
	"github.com/cameronsjo/berth/internal/manifest"
	"github.com/cameronsjo/berth/internal/secret"
	"github.com/cameronsjo/berth/internal/ui"
)

// errNoSecretStore indicates --secrets was requested without a store.
var errNoSecretStore = errors.New("no secret store configured (set VAULT_ADDR or BERTH_SECRETS_FILE)")

// env holds what every manifest command needs.
type env struct {
	cfg      *config.Config
	resolver *manifest.Resolver
	out      *ui.Printer
}

// newEnv loads configuration and builds a resolver for the command.
func newEnv(cmd *cobra.Command, log logrus.FieldLogger) (*env, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:      cfg,
		resolver: manifest.NewResolver(cfg.Root, manifest.Logger(log)),
		out:      ui.New(cmd.OutOrStdout()),
	}, nil
}

// validator returns a Validator sharing the resolver's manifest root.
func (e *env) validator(log logrus.FieldLogger) *manifest.Validator {
	return manifest.NewValidator(e.cfg.Root, manifest.Logger(log))
}

// openStore picks the configured secret store: Vault when an address is
// set, otherwise the SOPS secrets file.
func openStore(cfg *config.Config) (secret.Store, error) {
	switch {
	case cfg.HasVault():
		store, err := secret.NewVaultStore(cfg.Vault)
		if err != nil {
			return nil, fmt.Errorf("open vault store: %w", err)
		}
		return store, nil
	case cfg.SecretsFile != "":
		return secret.NewSOPSStore(cfg.SecretsFile), nil
	default:
		return nil, errNoSecretStore
	}
}

// listServices returns the sorted names of every service directory.
func listServices(cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.ServicesDir())
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// listRegions returns the sorted names of every region defaults file.
func listRegions(cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.EnvironmentsDir())
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), manifest.OverrideExt) {
			names = append(names, strings.TrimSuffix(e.Name(), manifest.OverrideExt))
		}
	}
	sort.Strings(names)
	return names, nil
}
