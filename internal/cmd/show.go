package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cameronsjo/berth/internal/manifest"
	"github.com/cameronsjo/berth/internal/secret"
)

var (
	showRegion  string
	showSecrets bool
)

// showCmd prints a resolved manifest.
var showCmd = &cobra.Command{
	Use:   "show <service>",
	Short: "Print the resolved manifest for a region",
	Long: heredoc.Doc(`
		Resolve a service for one region and print the result as YAML.

		Region overrides and implicit defaults are applied. Secret placeholders
		are left as-is unless --secrets is given.
	`),
	Example: heredoc.Doc(`
		berth show billing -r prod-us
		berth show billing -r prod-us --secrets
	`),
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showRegion, "region", "r", "", "Region to resolve for (required)")
	showCmd.Flags().BoolVar(&showSecrets, "secrets", false, "Resolve secret placeholders from the secret store")
	_ = showCmd.MarkFlagRequired("region")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	service := args[0]
	e, err := newEnv(cmd, logrus.StandardLogger())
	if err != nil {
		return err
	}

	var store secret.Store
	if showSecrets {
		if store, err = openStore(e.cfg); err != nil {
			return err
		}
	}

	m, err := e.resolver.Resolve(cmd.Context(), showRegion, service, store)
	if err != nil {
		return err
	}

	data, err := manifest.Marshal(m)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out.Writer(), "# %s in %s (secrets %s)\n", m.Name, m.Region, m.Secrets)
	_, err = e.out.Writer().Write(data)
	return err
}
