package scenario

import (
	"github.com/aerogrid/netmap/internal/watch"
	"github.com/aerogrid/netmap/log"
	tea "github.com/charmbracelet/bubbletea"
)

// ReloadedMsg carries the result of reloading a watched scenario.
type ReloadedMsg struct {
	Scenario *Scenario
	Err      error
}

// Watcher reloads a scenario file whenever it changes on disk.
type Watcher struct {
	w    *watch.Watcher
	path string
	opts []Option
}

// Watch starts watching path. Call Next to wait for the first reload.
func Watch(path string, opts ...Option) (*Watcher, error) {
	w, err := watch.New(path, watch.WithOnError(func(err error) {
		log.WarningLog.Printf("scenario watcher: %v", err)
	}))
	if err != nil {
		return nil, err
	}
	return &Watcher{w: w, path: path, opts: opts}, nil
}

// Next blocks until the file changes, reloads it and returns a ReloadedMsg.
// The command returns nil once the watcher is closed. Return Next again from
// Update to keep watching.
func (w *Watcher) Next() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.w.Changed(); !ok {
			return nil
		}
		s, err := Load(w.path, w.opts...)
		return ReloadedMsg{Scenario: s, Err: err}
	}
}

// Close stops watching.
func (w *Watcher) Close() {
	w.w.Stop()
}
