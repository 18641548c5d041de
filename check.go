package main

import (
	"errors"
	"fmt"
	"io"

	cmd2 "github.com/aerogrid/netmap/cmd"
	"github.com/aerogrid/netmap/config"
	"github.com/aerogrid/netmap/internal/check"
	"github.com/spf13/cobra"
)

// errUnhealthy is returned when health < 100% to signal exit code 1 without printing a message.
var errUnhealthy = errors.New("unhealthy")

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [scenario.yaml]",
		Short: "Audit a scenario for nodes the map can only show degraded",
		Long: `Loads a scenario the way the map does and reports:

  1. Nodes with a type missing from the type table (neutral color)
  2. Nodes with an empty or unknown layer ("other" group)
  3. Links the loader dropped
  4. Nodes no link ends at (informational)

Exit code 0 if 100% healthy, exit code 1 otherwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
		// Suppress usage on error: health failures are not usage errors.
		SilenceUsage: true,
		// Suppress cobra's "Error: ..." line for the unhealthy sentinel.
		SilenceErrors: true,
	}
	cmd.Flags().BoolP("verbose", "v", false, "show group sizes for both grouping modes")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	s, err := cmd2.ResolveScenario(arg, config.LoadConfig())
	if err != nil {
		return err
	}

	result := check.Audit(s)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scenario: %s (%d nodes, %d links)\n", s.Name, len(s.Nodes), len(s.Links))
	renderProblems(out, result.Problems())
	renderWarnings(out, result.Warnings)
	if verbose {
		renderGroups(out, result.Groups)
	}

	ok, total := result.Summary()
	pct := 0
	if total > 0 {
		pct = ok * 100 / total
	}

	fmt.Fprintf(out, "\nHealth: %d/%d OK (%d%%)\n", ok, total, pct)

	if pct < 100 {
		return errUnhealthy
	}
	return nil
}

func renderProblems(out io.Writer, problems []check.NodeEntry) {
	if len(problems) == 0 {
		return
	}
	fmt.Fprintf(out, "\nNodes:\n")
	for _, p := range problems {
		detail := ""
		if p.Detail != "" {
			detail = " (" + p.Detail + ")"
		}
		fmt.Fprintf(out, "  %s %-8s %-20s %s%s\n", statusGlyph(p.Status), p.ID, p.Name, p.Status, detail)
	}
}

func renderWarnings(out io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(out, "\nLoader:\n")
	for _, w := range warnings {
		fmt.Fprintf(out, "  ✗ %s\n", w)
	}
}

func renderGroups(out io.Writer, groups []check.GroupCount) {
	fmt.Fprintf(out, "\nGroups:\n")
	for _, g := range groups {
		fmt.Fprintf(out, "  %-6s %-16s %d\n", g.Mode, g.Label, g.Count)
	}
}

func statusGlyph(s check.NodeStatus) string {
	switch {
	case s == check.StatusOK:
		return "✓"
	case s.Blocking():
		return "✗"
	default:
		return "⊘"
	}
}

func init() {
	rootCmd.AddCommand(newCheckCmd())
}
