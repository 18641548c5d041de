package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aerogrid/netmap/app"
	cmd2 "github.com/aerogrid/netmap/cmd"
	"github.com/aerogrid/netmap/config"
	"github.com/aerogrid/netmap/config/eventlog"
	"github.com/aerogrid/netmap/grouping"
	initcmd "github.com/aerogrid/netmap/internal/initcmd"
	sentrypkg "github.com/aerogrid/netmap/internal/sentry"
	"github.com/aerogrid/netmap/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	version       = "0.3.0"
	groupFlag     string
	collapsedFlag bool
	watchFlag     bool
	verboseFlag   bool
	rootCmd       = &cobra.Command{
		Use:   "netmap [scenario.yaml]",
		Short: "netmap - a terminal map of ground, air and space network nodes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg := config.LoadConfig()
			if err := sentrypkg.Init(version, cfg.IsTelemetryEnabled()); err != nil {
				// Non-fatal: sentry failure should not prevent startup
				_ = err
			}
			defer sentrypkg.Flush()
			defer sentrypkg.RecoverPanic()

			log.Initialize(verboseFlag)
			defer log.Close()

			opts, err := runOptions(cmd, args, cfg)
			if err != nil {
				return err
			}

			logger := openEventLog(cfg)
			defer logger.Close()
			opts.Events = logger

			sentrypkg.SetContext(opts.Scenario.Name, len(opts.Scenario.Nodes), opts.Watch)
			return app.Run(ctx, opts)
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printDebug(cmd.OutOrStdout(), config.LoadConfig())
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of netmap",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "netmap version %s\n", version)
		},
	}
)

// runOptions turns flags and config into app options. Flags win over the
// config; an explicit --collapsed=false expands a sidebar the config
// collapses.
func runOptions(cmd *cobra.Command, args []string, cfg *config.Config) (app.Options, error) {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	s, err := cmd2.ResolveScenario(arg, cfg)
	if err != nil {
		return app.Options{}, err
	}

	opts := app.Options{
		Scenario: s,
		Config:   cfg,
		State:    config.LoadState(),
		Watch:    cfg.WatchScenario || watchFlag,
	}
	if groupFlag != "" {
		mode, ok := grouping.ParseMode(groupFlag)
		if !ok {
			return app.Options{}, fmt.Errorf("unknown grouping %q", groupFlag)
		}
		opts.GroupMode = mode
	}
	if cmd.Flags().Changed("collapsed") {
		collapsed := collapsedFlag
		opts.Collapsed = &collapsed
	}
	return opts, nil
}

// openEventLog opens the sqlite event log, falling back to a no-op logger
// when it is disabled or cannot be opened.
func openEventLog(cfg *config.Config) eventlog.Logger {
	if !cfg.IsEventLogEnabled() {
		return eventlog.NopLogger()
	}
	path, err := config.EventLogPath()
	if err == nil {
		err = os.MkdirAll(filepath.Dir(path), 0o755)
	}
	if err != nil {
		log.WarningLog.Printf("event log disabled: %v", err)
		return eventlog.NopLogger()
	}
	logger, err := eventlog.NewSQLiteLogger(path)
	if err != nil {
		log.WarningLog.Printf("event log disabled: %v", err)
		return eventlog.NopLogger()
	}
	return logger
}

func openEventLogForRead() (eventlog.Logger, error) {
	path, err := config.EventLogPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no event log at %s", path)
	}
	return eventlog.NewSQLiteLogger(path)
}

func printDebug(out io.Writer, cfg *config.Config) error {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	tomlPath, _ := config.TOMLConfigPath()
	eventsPath, _ := config.EventLogPath()

	configJSON, _ := json.MarshalIndent(cfg, "", "  ")
	tuningJSON, _ := json.MarshalIndent(cfg.Tuning, "", "  ")

	fmt.Fprintf(out, "Config dir: %s\n", configDir)
	fmt.Fprintf(out, "TOML:       %s\n", tomlPath)
	fmt.Fprintf(out, "Event log:  %s\n", eventsPath)
	fmt.Fprintf(out, "Log file:   %s\n", log.Path())
	fmt.Fprintf(out, "Telemetry:  %v (%s set: %v)\n", cfg.IsTelemetryEnabled(), sentrypkg.DSNEnv, os.Getenv(sentrypkg.DSNEnv) != "")
	fmt.Fprintf(out, "\nConfig:\n%s\n\nTuning:\n%s\n", configJSON, tuningJSON)
	return nil
}

func stdoutIsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func init() {
	rootCmd.Flags().StringVarP(&groupFlag, "group", "g", "", "initial grouping of the node list (layer, type)")
	rootCmd.Flags().BoolVar(&collapsedFlag, "collapsed", false, "start with the node list collapsed to a rail")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "reload the scenario file when it changes")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "write debug lines to the log file")

	var cleanFlag bool
	setupCmd := &cobra.Command{
		Use:     "setup",
		Aliases: []string{"init"},
		Short:   "Tune focus and animation timings",
		Long: `Run an interactive form that writes ~/.config/netmap/config.toml:
  focus zoom levels, fly-to duration and easing, popup delays,
  group collapse timing, and the event log and crash report switches.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initcmd.Run(initcmd.Options{Clean: cleanFlag, Out: cmd.OutOrStdout()})
		},
	}
	setupCmd.Flags().BoolVar(&cleanFlag, "clean", false, "Ignore existing config, start with factory defaults")

	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(cmd2.NewGroupsCmd(stdoutIsTTY))
	rootCmd.AddCommand(cmd2.NewEventsCmd(openEventLogForRead))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errUnhealthy) {
			os.Exit(1)
		}
		fmt.Println(err)
		os.Exit(1)
	}
}
