// Package iridescent implements iris, an interactive line-editing filter
// interposed between a user's terminal and a subordinate interactive
// shell process. It intercepts each keystroke, transforms it through a
// modal (vim-inspired) editor into outgoing bytes for the host shell,
// and maintains a persistent, searchable command history.
//
// This root package owns every piece of mutable per-session state (the
// line buffer, clipboard, history store, and mode controller) and wires
// them together behind the PTY bridge's two-hook contract
// (input_filter/output_filter, spec.md §6); it is the "Engine" spec.md
// §9 asks for: a single owner, with the mode controller holding only a
// narrow, non-owning view of the history store.
package iridescent

import (
	"bytes"
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/shuheng-liu/iridescent/clipboard"
	"github.com/shuheng-liu/iridescent/history"
	"github.com/shuheng-liu/iridescent/irislog"
	"github.com/shuheng-liu/iridescent/keybind"
	"github.com/shuheng-liu/iridescent/line"
	"github.com/shuheng-liu/iridescent/mode"
)

// StyleReset is the escape sequence OutputFilter inserts ahead of a bare
// shell prompt line, per spec.md §6.
const StyleReset = "\x1b[0m"

// Engine is one editing session: the current line, clipboard, history
// store, mode controller, and the resolved key-binding table, plus the
// two log sinks. It implements the PTY bridge's input_filter/
// output_filter hooks as Feed/OutputFilter.
type Engine struct {
	buf  *line.Buffer
	cb   clipboard.Clipboard
	hist *history.Store
	ctrl *mode.Controller
	keys *keybind.Table

	debug  irislog.Sink
	events irislog.Sink

	pending []byte
}

// New returns an Engine driving hist and using keys to resolve raw
// bytes into named keys. debug and events may be zero-value Sinks
// (irislog.NewSink(nil)), which disables logging.
func New(hist *history.Store, keys *keybind.Table, debug, events irislog.Sink) *Engine {
	return &Engine{
		buf:    line.New(),
		hist:   hist,
		ctrl:   mode.New(hist),
		keys:   keys,
		debug:  debug,
		events: events,
	}
}

// OutputFilter is the PTY bridge's output_filter hook: per spec.md §6,
// if the downstream byte stream ends in a bare shell prompt marker ('>'
// with no '<' since the last newline, once ANSI styling is stripped for
// the check), a style-reset escape is inserted just ahead of that
// prompt line so leftover SGR state from command output doesn't bleed
// into the prompt.
func (e *Engine) OutputFilter(b []byte) []byte {
	stripped := stripansi.Strip(string(b))

	tail := stripped
	if idx := strings.LastIndex(stripped, "\r\n"); idx >= 0 {
		tail = stripped[idx+2:]
	}

	if !strings.HasSuffix(tail, ">") || strings.Contains(tail, "<") {
		return b
	}

	insertAt := len(b)
	if idx := bytes.LastIndex(b, []byte("\r\n")); idx >= 0 {
		insertAt = idx + 2
	} else {
		insertAt = 0
	}

	out := make([]byte, 0, len(b)+len(StyleReset))
	out = append(out, b[:insertAt]...)
	out = append(out, []byte(StyleReset)...)
	out = append(out, b[insertAt:]...)
	return out
}

// Flush persists the session's new history entries, per spec.md §4.3's
// persistence rule (including the default-path suppression spec.md §9
// leaves open and SPEC_FULL.md §E.1 resolves).
func (e *Engine) Flush() error {
	return e.hist.Flush()
}
