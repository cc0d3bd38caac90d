// Package logging provides the project's structured terminal logger, a
// direct generalization of the teacher's Slogger (display.go): one
// *log.Logger per level, optionally colorized with mgutz/ansi.
package logging

import (
	"io"
	"log"
	"os"

	"github.com/mgutz/ansi"
)

// Logger groups one *log.Logger per severity level.
type Logger struct {
	Debug   *log.Logger
	Info    *log.Logger
	Section *log.Logger
	Warning *log.Logger
	Error   *log.Logger
}

// Config controls how New builds a Logger, sourced from the [logging]
// table of the TOML config file (spec §6).
type Config struct {
	Debug  bool
	Color  bool
	Output io.Writer // defaults to os.Stderr when nil
}

// New builds a Logger per cfg.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	debugOut := io.Discard
	if cfg.Debug {
		debugOut = out
	}

	l := &Logger{
		Debug:   log.New(debugOut, "@@ ", 0),
		Info:    log.New(out, ":: ", 0),
		Section: log.New(out, "==> ", 0),
		Warning: log.New(out, ":: Warning: ", 0),
		Error:   log.New(out, ":: Error: ", 0),
	}

	if cfg.Color {
		l.Debug.SetPrefix(ansi.Color(l.Debug.Prefix(), "cyan+b"))
		l.Info.SetPrefix(ansi.Color(l.Info.Prefix(), "magenta+b"))
		l.Section.SetPrefix(ansi.Color(l.Section.Prefix(), "green+b"))
		l.Warning.SetPrefix(ansi.Color(l.Warning.Prefix(), "blue+b"))
		l.Error.SetPrefix(ansi.Color(l.Error.Prefix(), "red+b"))
	}

	return l
}

// Nop returns a Logger that discards everything, useful for tests.
func Nop() *Logger {
	return New(Config{Output: io.Discard})
}
