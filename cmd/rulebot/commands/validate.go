// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/rules"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and compile every triage rule",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if noColor || isCI() {
			color.NoColor = true
		}
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		if n := validateConfig(cmd.OutOrStdout(), cfg); n > 0 {
			return fmt.Errorf("%d invalid triage rule(s)", n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validateConfig prints a report of cfg and returns the number of broken rules.
func validateConfig(w io.Writer, cfg *config.Config) int {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	onOff := func(b bool) string {
		if b {
			return ok("on")
		}
		return faint("off")
	}

	fmt.Fprintln(w, "Features:")
	fmt.Fprintf(w, "  check_editorial_rules            %s\n", onOff(cfg.Features.CheckEditorialRules))
	fmt.Fprintf(w, "  triage_issues_and_pull_requests  %s\n", onOff(cfg.Features.TriageIssuesAndPullRequests))
	fmt.Fprintf(w, "  dry_run                          %s\n", onOff(cfg.DryRun))

	fmt.Fprintf(w, "\nLabel policy: max %d new labels, fallback %q, area prefix %q\n",
		cfg.Triage.MaxNewLabels, cfg.Triage.NeedsTriageLabel, cfg.Triage.AreaLabelPrefix)

	compiled, errs := rules.Compile(cfg.Triage.Rules)

	fmt.Fprintf(w, "\nTriage rules (%d):\n", len(cfg.Triage.Rules))
	for _, r := range compiled {
		fmt.Fprintf(w, "  %s %s %s\n", ok("✓"), r.ID, faint(fmt.Sprintf("(%s, %s)", r.Kind, r.Scope)))
	}
	for _, err := range errs {
		fmt.Fprintf(w, "  %s %v\n", bad("✗"), err)
	}

	if len(cfg.Triage.Rules) > 0 && !cfg.Features.TriageIssuesAndPullRequests {
		fmt.Fprintln(w, faint("\nnote: triage rules are configured but triage_issues_and_pull_requests is off"))
	}
	return len(errs)
}
