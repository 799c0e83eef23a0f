package cmd

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	vfs "github.com/twpayne/go-vfs"

	"github.com/cameronsjo/berth/internal/config"
	"github.com/cameronsjo/berth/internal/lock"
	"github.com/cameronsjo/berth/internal/manifest"
	"github.com/cameronsjo/berth/internal/ui"
)

// initCmd scaffolds a service descriptor.
var initCmd = &cobra.Command{
	Use:   "init <service>",
	Short: "Scaffold a service descriptor",
	Long: heredoc.Doc(`
		Create services/<service>/manifest.yml holding only the service name.

		An existing descriptor is never overwritten.
	`),
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return err
	}
	out := ui.New(cmd.OutOrStdout())

	return lock.WithLock(cfg.Root, "init", func() error {
		m, err := manifest.Init(vfs.HostOSFS, manifest.Layout{Root: cfg.Root}, args[0])
		if err != nil {
			return err
		}
		out.Success("Created %s", m.Path)
		return nil
	})
}
