package initcmd

import (
	"fmt"
	"io"

	"github.com/aerogrid/netmap/config"
	"github.com/aerogrid/netmap/internal/initcmd/wizard"
)

// Options holds the CLI flags for netmap setup.
type Options struct {
	Clean bool // ignore existing config, start with factory defaults
	Out   io.Writer
}

// Run executes the netmap setup workflow.
func Run(opts Options) error {
	var existing *config.TOMLConfigResult
	if !opts.Clean {
		var err error
		existing, err = config.LoadTOMLConfig()
		if err != nil {
			fmt.Fprintf(opts.Out, "Warning: could not load existing config: %v\n", err)
		}
	}

	state, err := wizard.Run(existing)
	if err != nil {
		return err
	}
	path, err := config.TOMLConfigPath()
	if err != nil {
		return err
	}
	return write(opts.Out, state, path)
}

// write is the post-form half of Run.
func write(out io.Writer, state *wizard.State, path string) error {
	tc, err := state.ToTOMLConfig()
	if err != nil {
		return err
	}
	if err := config.SaveTOMLConfigTo(tc, path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}
