// Command iris is the CLI bootstrap and PTY bridge for the iris editor:
// argument parsing, credential/environment resolution, log-file opening,
// and the pseudo-terminal spawn of the host shell, wiring
// iridescent.Engine's Feed/OutputFilter as the bridge's input_filter/
// output_filter hooks (spec.md §1, §6 — an out-of-scope collaborator
// made concrete here).
package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/creack/pty"
	flags "github.com/jessevdk/go-flags"
	"golang.org/x/term"

	"github.com/shuheng-liu/iridescent"
	"github.com/shuheng-liu/iridescent/config"
	"github.com/shuheng-liu/iridescent/history"
	"github.com/shuheng-liu/iridescent/irislog"
	"github.com/shuheng-liu/iridescent/keybind"
)

func main() {
	os.Exit(run())
}

func run() int {
	var opts struct {
		Positional struct {
			Instance string `positional-arg-name:"instance"`
		} `positional-args:"yes"`
		LogPath     string `short:"l" long:"log-path" description:"session lifecycle log path"`
		DebugPath   string `short:"d" long:"debug-path" description:"keystroke debug log path"`
		HistoryPath string `short:"H" long:"history-path" description:"history file path (default ~/.iris_history)"`
	}

	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "iris"

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return 0
		}
		return 1
	}

	instance := opts.Positional.Instance
	if instance == "" {
		instance = os.Getenv("IRIS_INSTANCE")
	}
	if instance == "" {
		fmt.Fprintln(os.Stderr, "iris: missing instance")
		return 1
	}

	debugSink := openSink(opts.DebugPath)
	logSink := openSink(opts.LogPath)

	// Credential fetch (IRIS_USERNAME/IRIS_PASSWORD) is the CLI
	// bootstrap's job per spec.md §1/§6; the core editor never reads
	// them. They are resolved here only to hand off to the instance
	// connection step a full implementation of the out-of-scope PTY
	// bridge collaborator would perform.
	_ = os.Getenv("IRIS_USERNAME")
	_ = os.Getenv("IRIS_PASSWORD")

	hist := history.New()
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		logSink.Errorf("config load: %v", err)
	}
	if cfg.HistorySize > 0 {
		hist.SetMaxEntries(cfg.HistorySize)
	}
	if len(cfg.RejectPatterns) > 0 {
		patterns := make([]*regexp.Regexp, 0, len(cfg.RejectPatterns))
		for _, p := range cfg.RejectPatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				logSink.Errorf("config reject pattern %q: %v", p, err)
				continue
			}
			patterns = append(patterns, re)
		}
		if len(patterns) > 0 {
			hist.SetRejectPatterns(patterns)
		}
	}

	histPath, explicit := resolveHistoryPath(opts.HistoryPath)
	if err := hist.Load(histPath, explicit); err != nil {
		logSink.Errorf("history load: %v", err)
	}
	defer func() {
		if err := hist.Flush(); err != nil {
			logSink.Errorf("history flush: %v", err)
		}
	}()

	kb := keybind.New()
	stop := make(chan struct{})
	defer close(stop)
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		kbErrs := make(chan error, 1)
		if err := kb.Watch(filepath.Join(home, ".iridescent", "strokes.json"), stop, kbErrs); err != nil {
			logSink.Errorf("keybind watch: %v", err)
		}
		go func() {
			for err := range kbErrs {
				logSink.Errorf("keybind reload: %v", err)
			}
		}()
	}

	eng := iridescent.New(hist, kb, debugSink, logSink)

	logSink.Event(fmt.Sprintf("iris starting instance=%s", instance))
	defer logSink.Event("iris exiting")

	return bridge(eng)
}

func openSink(path string) irislog.Sink {
	if path == "" {
		return irislog.NewSink(nil)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return irislog.NewSink(nil)
	}
	return irislog.NewSink(f)
}

// resolveHistoryPath applies spec.md §6's default path, the
// $IRIS_HISTORY environment variable, and its -H/--history-path flag (in
// that ascending order of precedence), and reports whether the caller
// explicitly chose the path (vs. falling back to the compiled-in
// default), which governs the default-path flush suppression of
// SPEC_FULL.md §E.1.
func resolveHistoryPath(flag string) (path string, explicit bool) {
	if flag != "" {
		return expandHome(flag), true
	}
	if env := os.Getenv("IRIS_HISTORY"); env != "" {
		return expandHome(env), true
	}
	return expandHome(history.DefaultPath), false
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// bridge spawns the host shell in a pseudo-terminal and relays bytes
// between it and the controlling terminal, running every input byte
// through eng.Feed and every output byte through eng.OutputFilter — the
// PTY bridge contract of spec.md §1/§6.
func bridge(eng *iridescent.Engine) int {
	shellPath := os.Getenv("SHELL")
	if shellPath == "" {
		shellPath = "/bin/sh"
	}

	cmd := exec.Command(shellPath)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "iris: spawn host shell: %v\n", err)
		return 1
	}
	defer ptmx.Close()

	stdinFd := int(os.Stdin.Fd())
	saved, rawErr := term.MakeRaw(stdinFd)
	if rawErr == nil {
		defer term.Restore(stdinFd, saved)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				os.Stdout.Write(eng.OutputFilter(buf[:n]))
			}
			if err != nil {
				return
			}
		}
	}()

	inBuf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(inBuf)
		if n > 0 {
			chunk := inBuf[:n]
			if i := bytes.IndexByte(chunk, iridescent.EscapeChar); i >= 0 {
				ptmx.Write(eng.Feed(chunk[:i]))
				break
			}
			ptmx.Write(eng.Feed(chunk))
		}
		if err != nil {
			break
		}
		select {
		case <-done:
			goto wait
		default:
		}
	}

wait:
	ptmx.Close()
	_ = cmd.Wait()
	return 0
}
