package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/berth/internal/config"
)

// completeServiceNames completes service directory names. single limits
// completion to the first argument.
func completeServiceNames(single bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if single && len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		cfg, err := config.Load(rootDir)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		services, err := listServices(cfg)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		return filterPrefix(services, toComplete, args), cobra.ShellCompDirectiveNoFileComp
	}
}

// completeRegionNames completes region names from environments/.
func completeRegionNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	regions, err := listRegions(cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return filterPrefix(regions, toComplete, nil), cobra.ShellCompDirectiveNoFileComp
}

// filterPrefix keeps names starting with prefix that are not already taken.
func filterPrefix(names []string, prefix string, taken []string) []string {
	var out []string
	for _, n := range names {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		dup := false
		for _, t := range taken {
			if t == n {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, n)
		}
	}
	return out
}

// registerCompletions wires dynamic completions once every command exists.
func registerCompletions() {
	showCmd.ValidArgsFunction = completeServiceNames(true)
	renderCmd.ValidArgsFunction = completeServiceNames(true)
	validateCmd.ValidArgsFunction = completeServiceNames(false)

	for _, c := range []*cobra.Command{showCmd, renderCmd, validateCmd} {
		// Completions are optional; registration only fails on a missing flag.
		_ = c.RegisterFlagCompletionFunc("region", completeRegionNames)
	}
}

func init() {
	cobra.OnInitialize(registerCompletions)
}
