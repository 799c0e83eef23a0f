package cmd

import (
	"path/filepath"
	"sort"

	"github.com/MakeNowJust/heredoc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cameronsjo/berth/internal/fileutil"
	"github.com/cameronsjo/berth/internal/lock"
	"github.com/cameronsjo/berth/internal/secret"
)

var (
	renderRegion  string
	renderOutput  string
	renderSecrets bool
)

// renderCmd renders a service's config templates.
var renderCmd = &cobra.Command{
	Use:   "render <service>",
	Short: "Render config templates for a region",
	Long: heredoc.Doc(`
		Resolve a service for one region and render its config templates.

		Templates are Go text/template files with sprig functions. They see
		.Name, .Region, .Namespace, .Location, .Image, .Env and .Manifest.
		Output goes to stdout unless --output names a directory.
	`),
	Example: heredoc.Doc(`
		berth render billing -r prod-us
		berth render billing -r prod-us --secrets -o ./out
	`),
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderRegion, "region", "r", "", "Region to resolve for (required)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write files into this directory")
	renderCmd.Flags().BoolVar(&renderSecrets, "secrets", false, "Resolve secret placeholders from the secret store")
	_ = renderCmd.MarkFlagRequired("region")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	service := args[0]
	e, err := newEnv(cmd, logrus.StandardLogger())
	if err != nil {
		return err
	}

	var store secret.Store
	if renderSecrets {
		if store, err = openStore(e.cfg); err != nil {
			return err
		}
	}

	m, err := e.resolver.Resolve(cmd.Context(), renderRegion, service, store)
	if err != nil {
		return err
	}

	files, err := e.resolver.RenderConfigs(m)
	if err != nil {
		return err
	}

	dests := make([]string, 0, len(files))
	for dest := range files {
		dests = append(dests, dest)
	}
	sort.Strings(dests)

	if renderOutput == "" {
		for _, dest := range dests {
			e.out.Section(dest)
			if _, err := e.out.Writer().Write(files[dest]); err != nil {
				return err
			}
		}
		return nil
	}

	return lock.WithLock(e.cfg.Root, "render", func() error {
		for _, dest := range dests {
			path := filepath.Join(renderOutput, dest)
			if err := fileutil.WriteFileAtomic(path, files[dest], 0o644); err != nil {
				return err
			}
			e.out.Success("%s", path)
		}
		return nil
	})
}
