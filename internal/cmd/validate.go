package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cameronsjo/berth/internal/alert"
	"github.com/cameronsjo/berth/internal/manifest"
)

var (
	validateRegion string
	validateNotify bool
)

// validateCmd validates service manifests.
var validateCmd = &cobra.Command{
	Use:   "validate [service...]",
	Short: "Validate service manifests",
	Long: heredoc.Doc(`
		Resolve and validate services offline, once per declared region.

		Each service is reported on its own; one failing service does not stop
		the others. With --region only that region is checked. Secrets are
		never read.

		Checks:
		  - resources set, requests within limits and ceilings
		  - config mount and template names
		  - dependencies and region defaults exist
		  - init container images and commands
		  - health check uri and wait
	`),
	Example: heredoc.Doc(`
		berth validate                  # every service
		berth validate billing ledger
		berth validate billing -r prod-us
		berth validate --notify         # post a summary to Slack
	`),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateRegion, "region", "r", "", "Only validate this region")
	validateCmd.Flags().BoolVar(&validateNotify, "notify", false, "Post a summary to Slack")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	run := uuid.NewString()
	log := logrus.WithField("run", run)

	e, err := newEnv(cmd, log)
	if err != nil {
		return err
	}
	v := e.validator(log)

	services := args
	if len(services) == 0 {
		if services, err = listServices(e.cfg); err != nil {
			return err
		}
	}

	e.out.Header("Validating %d service(s)", len(services))

	ctx := cmd.Context()
	results := make([]alert.Result, 0, len(services))
	failed := 0
	for _, service := range services {
		var err error
		if validateRegion != "" {
			var m *manifest.Manifest
			if m, err = e.resolver.Resolve(ctx, validateRegion, service, nil); err == nil {
				err = v.Verify(m)
			}
		} else {
			err = manifest.ValidateAll(ctx, e.resolver, v, service)
		}

		results = append(results, alert.Result{Service: service, Err: err})
		if err != nil {
			failed++
			e.out.Error("%s: %v", service, err)
			log.WithField("service", service).WithError(err).Debug("Validation failed")
			continue
		}
		e.out.Success("%s", service)
	}

	if validateNotify {
		mgr := alert.NewManager()
		mgr.AddProvider(alert.NewSlackProvider(e.cfg.Slack))
		if !mgr.HasProviders() {
			e.out.Warning("Notification skipped: Slack is not configured")
		} else if err := mgr.SendValidationSummary(ctx, run, results); err != nil {
			e.out.Warning("Notification failed: %v", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d service(s) failed validation", failed, len(services))
	}
	e.out.Ship("All %d service(s) valid", len(services))
	return nil
}
