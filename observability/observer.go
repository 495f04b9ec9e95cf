// Package observability carries events out of the variable container and the
// engine boundary for logging and metrics.
//
// Every package that emits defines its event types as dotted names whose
// first segment is the emitting package ("graph.variable.add",
// "problem.apply"). Emit derives the event source from that segment, so a
// log line or counter can always be traced back to the package that raised
// it.
//
// Level values follow the OpenTelemetry SeverityNumber ranges, and levels
// read from configuration accept their severity text:
//
//	graph:
//	  observer: slog
//	  level: warn
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrUnknownLevel is returned when a severity name cannot be parsed.
var ErrUnknownLevel = errors.New("unknown level")

// Level is event severity on the OTel SeverityNumber scale.
type Level int

const (
	LevelVerbose Level = 5  // DEBUG
	LevelInfo    Level = 9  // INFO
	LevelWarning Level = 13 // WARN
	LevelError   Level = 17 // ERROR
)

// ParseLevel maps a severity name to its Level. Matching is case-insensitive
// and accepts both the OTel severity text and the names used by the Level
// constants.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "verbose":
		return LevelVerbose, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps the level onto slog's four levels.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// MarshalText encodes the level as its severity text.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a severity name with ParseLevel, so levels can be
// written by name in JSON and YAML configuration.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// EventType is a dotted event name such as "graph.checkpoint.save".
type EventType string

// Source returns the first segment of the event name.
func (t EventType) Source() string {
	source, _, _ := strings.Cut(string(t), ".")
	return source
}

// Event is one emitted occurrence. Data holds the attributes of the event;
// it is owned by the receiver once emitted.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events. OnEvent is called synchronously from the
// emitting operation, possibly from several goroutines at once, and must not
// block.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Emit sends an event stamped with the current time, its source taken from
// typ. A nil observer is ignored.
func Emit(ctx context.Context, o Observer, typ EventType, level Level, data map[string]any) {
	if o == nil {
		return
	}
	o.OnEvent(ctx, Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    typ.Source(),
		Data:      data,
	})
}
