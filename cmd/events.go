package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aerogrid/netmap/config/eventlog"
	"github.com/spf13/cobra"
)

// EventsQuery is the flag set of `netmap events`.
type EventsQuery struct {
	Limit    int
	Kinds    []string
	Scenario string
	Node     string
	Session  string
	Since    time.Duration
}

func parseKinds(raw []string) ([]eventlog.EventKind, error) {
	kinds := make([]eventlog.EventKind, 0, len(raw))
	for _, r := range raw {
		k := eventlog.EventKind(r)
		if !slices.Contains(eventlog.AllKinds, k) {
			names := make([]string, len(eventlog.AllKinds))
			for i, known := range eventlog.AllKinds {
				names[i] = known.String()
			}
			return nil, fmt.Errorf("unknown event kind %q; valid kinds: %s", r, strings.Join(names, ", "))
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// executeEvents prints matching events oldest first, one per line.
func executeEvents(w io.Writer, logger eventlog.Logger, q EventsQuery, now time.Time) error {
	kinds, err := parseKinds(q.Kinds)
	if err != nil {
		return err
	}
	filter := eventlog.QueryFilter{
		Session:  q.Session,
		Scenario: q.Scenario,
		NodeID:   q.Node,
		Kinds:    kinds,
		Limit:    q.Limit,
	}
	if q.Since > 0 {
		filter.After = now.Add(-q.Since)
	}
	events, err := logger.Query(filter)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(w, "no events")
		return nil
	}
	for _, e := range slices.Backward(events) {
		level := e.Level
		if level == "" {
			level = "info"
		}
		line := fmt.Sprintf("%s  %-5s %-16s %-18s %s",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), level, e.Kind, e.Scenario, e.Message)
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	return nil
}

// NewEventsCmd builds `netmap events`. open returns the event log to read.
func NewEventsCmd(open func() (eventlog.Logger, error)) *cobra.Command {
	var q EventsQuery
	cmd := &cobra.Command{
		Use:   "events",
		Short: "print the recorded selection and scenario events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := open()
			if err != nil {
				return err
			}
			defer logger.Close()
			return executeEvents(cmd.OutOrStdout(), logger, q, time.Now())
		},
	}
	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 50, "maximum number of events")
	cmd.Flags().StringSliceVarP(&q.Kinds, "kind", "k", nil, "only these kinds (repeatable)")
	cmd.Flags().StringVar(&q.Scenario, "scenario", "", "only events of this scenario")
	cmd.Flags().StringVar(&q.Node, "node", "", "only events about this node id")
	cmd.Flags().StringVar(&q.Session, "session", "", "only events of this session id")
	cmd.Flags().DurationVar(&q.Since, "since", 0, "only events newer than this (e.g. 1h)")
	return cmd
}
