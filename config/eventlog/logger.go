package eventlog

import (
	"time"

	"github.com/google/uuid"
)

// QueryFilter specifies criteria for querying events.
type QueryFilter struct {
	Session  string
	Scenario string
	NodeID   string
	Kinds    []EventKind
	Limit    int
	Before   time.Time
	After    time.Time
}

// Logger is the interface for emitting and querying events.
type Logger interface {
	Emit(event Event)
	Query(filter QueryFilter) ([]Event, error)
	Close() error
}

// NewSessionID returns a fresh id for one run of the program.
func NewSessionID() string {
	return uuid.NewString()
}

// EventOption is a functional option for configuring optional Event fields.
type EventOption func(*Event)

// WithNode sets the NodeID field on the event.
func WithNode(id string) EventOption {
	return func(e *Event) { e.NodeID = id }
}

// WithGroup sets the GroupMode and GroupKey fields on the event.
func WithGroup(mode, key string) EventOption {
	return func(e *Event) {
		e.GroupMode = mode
		e.GroupKey = key
	}
}

// WithDetail sets the Detail field on the event (JSON-encoded extra data).
func WithDetail(detail string) EventOption {
	return func(e *Event) { e.Detail = detail }
}

// WithLevel sets the Level field on the event (info, warn, error).
func WithLevel(level string) EventOption {
	return func(e *Event) { e.Level = level }
}

// Session stamps every event with one session id and the current scenario.
type Session struct {
	logger   Logger
	id       string
	scenario string
}

// NewSession wraps logger with a new session id.
func NewSession(logger Logger) *Session {
	return &Session{logger: logger, id: NewSessionID()}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// SetScenario changes the scenario name stamped on later events.
func (s *Session) SetScenario(name string) { s.scenario = name }

// Emit records an event of kind with msg.
func (s *Session) Emit(kind EventKind, msg string, opts ...EventOption) {
	e := Event{Kind: kind, Session: s.id, Scenario: s.scenario, Message: msg}
	for _, opt := range opts {
		opt(&e)
	}
	s.logger.Emit(e)
}

// Recent returns this session's newest events, newest first.
func (s *Session) Recent(limit int) ([]Event, error) {
	return s.logger.Query(QueryFilter{Session: s.id, Limit: limit})
}

// Close closes the underlying logger.
func (s *Session) Close() error {
	return s.logger.Close()
}

// nopLogger is a no-op Logger used when the event log is disabled.
type nopLogger struct{}

// NopLogger returns a Logger that discards all events.
func NopLogger() Logger {
	return &nopLogger{}
}

func (n *nopLogger) Emit(_ Event) {}

func (n *nopLogger) Query(_ QueryFilter) ([]Event, error) {
	return nil, nil
}

func (n *nopLogger) Close() error {
	return nil
}
