package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/aerogrid/netmap/config"
	"github.com/aerogrid/netmap/grouping"
	"github.com/aerogrid/netmap/model"
	"github.com/aerogrid/netmap/scenario"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// ResolveScenario picks the scenario to open: the command-line path, then the
// configured default, then the built-in one.
func ResolveScenario(arg string, cfg *config.Config) (*scenario.Scenario, error) {
	path := arg
	if path == "" && cfg != nil {
		path = cfg.DefaultScenario
	}
	if path == "" {
		return scenario.Default(), nil
	}
	return scenario.Load(path)
}

// executeGroups writes the node classification under mode. color paints
// each group header in its group color.
func executeGroups(w io.Writer, s *scenario.Scenario, mode grouping.Mode, color bool) {
	groups := grouping.Classify(s.Nodes, mode, s.TypeMeta)
	fmt.Fprintf(w, "%s: %d nodes %s\n", s.Name, len(s.Nodes), grouping.Option(mode).Label)

	nameWidth := 0
	for _, n := range s.Nodes {
		nameWidth = max(nameWidth, runewidth.StringWidth(n.Name))
	}
	for _, g := range groups {
		header := fmt.Sprintf("%s (%d)", g.Label, len(g.Nodes))
		if color {
			header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(g.Color)).Render(header)
		}
		fmt.Fprintf(w, "\n%s\n", header)
		for _, n := range g.Nodes {
			fmt.Fprintf(w, "  %-6s %s  %s  %s\n", n.ID, runewidth.FillRight(n.Name, nameWidth),
				n.Position, secondaryKey(s, n, mode))
		}
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "\nwarning: %s\n", warn)
	}
}

// secondaryKey is the label of the grouping the list is not using.
func secondaryKey(s *scenario.Scenario, n model.Node, mode grouping.Mode) string {
	if mode == grouping.ModeType {
		if meta, ok := grouping.LayerMeta[n.Layer]; ok {
			return meta.Label
		}
		return n.Layer
	}
	return s.TypeMeta.Resolve(n.Type).Label
}

func modeNames() string {
	names := make([]string, 0, len(grouping.Modes))
	for _, m := range grouping.Modes {
		names = append(names, string(m.Mode))
	}
	return strings.Join(names, ", ")
}

// NewGroupsCmd builds `netmap groups`. isTTY reports whether stdout takes
// colors.
func NewGroupsCmd(isTTY func() bool) *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "groups [scenario.yaml]",
		Short: "print how the node list groups a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, ok := grouping.ParseMode(by)
			if !ok {
				return fmt.Errorf("unknown grouping %q; valid: %s", by, modeNames())
			}
			var arg string
			if len(args) > 0 {
				arg = args[0]
			}
			s, err := ResolveScenario(arg, config.LoadConfig())
			if err != nil {
				return err
			}
			executeGroups(cmd.OutOrStdout(), s, mode, isTTY())
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", string(grouping.ModeLayer), "grouping mode ("+modeNames()+")")
	return cmd
}
