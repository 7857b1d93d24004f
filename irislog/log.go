// Package irislog implements the two plain io.Writer log sinks spec.md
// §7 calls "an opaque sink consuming formatted records": one for raw
// keystroke/debug records, one for session lifecycle events. Neither is a
// structured or leveled logging framework — each appends one formatted
// line per call, matching the source's own "append a line" behavior.
package irislog

import (
	"fmt"
	"io"
	"time"

	"github.com/reiver/go-caret"
)

// Sink wraps an io.Writer; a nil Writer means "disabled" and every method
// is then a no-op, per spec.md's "Debug logging: opaque sink" wording
// (absence of a sink is not an error).
type Sink struct {
	w io.Writer
}

// NewSink wraps w. w may be nil.
func NewSink(w io.Writer) Sink {
	return Sink{w: w}
}

// Keystroke logs one raw input byte sequence in caret notation
// (^C, ^[, ^?), alongside the mode it was read in and the action name it
// resolved to, if any.
func (s Sink) Keystroke(mode string, raw []byte, action string) {
	if s.w == nil {
		return
	}
	fmt.Fprintf(s.w, "%s mode=%s key=%s action=%s\n",
		time.Now().UTC().Format(time.RFC3339Nano), mode, caret.Encode(string(raw)), action)
}

// Event logs a session lifecycle line (instance start/stop, history
// load/flush errors, keyboard-config load failures). Any control bytes
// embedded in msg are caret-encoded so the log stays one line per record.
func (s Sink) Event(msg string) {
	if s.w == nil {
		return
	}
	fmt.Fprintf(s.w, "%s %s\n", time.Now().UTC().Format(time.RFC3339Nano), caret.Encode(msg))
}

// Errorf logs a formatted session error line.
func (s Sink) Errorf(format string, args ...any) {
	s.Event(fmt.Sprintf(format, args...))
}
