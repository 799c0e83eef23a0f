// Package cmd provides the CLI commands for berth.
package cmd

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	rootDir  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "berth",
	Short: "Resolve and validate service deployment manifests",
	Long: heredoc.Doc(`
		berth - dock your services safely

		Resolves per-service deployment descriptors against region overrides,
		injects secrets, and validates the result before rollout.

		MANIFEST COMMANDS
		  show <service> -r <region>     Print the resolved manifest
		  validate [service...]          Validate every declared region
		  render <service> -r <region>   Render config templates
		  init <service>                 Scaffold a service descriptor

		The manifest root holds services/ and environments/. It is taken from
		--root, then BERTH_MANIFEST_DIR, then the nearest parent directory.
	`),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		logrus.SetOutput(cmd.ErrOrStderr())
		logrus.SetLevel(level)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Manifest root directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate("berth version {{.Version}}\n")
}
