// Package logging builds the structured loggers shared by the hosts.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/somanaut/internal/config"
)

// Options configures a logger. Zero values fall back to the LOG_LEVEL and
// LOG_FILE environment variables, then to info level on stderr.
type Options struct {
	Level  string
	Output io.Writer
}

// New returns a logger prefixed with component.
func New(component string, opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = defaultOutput()
	}
	level := opts.Level
	if level == "" {
		level = config.GetEnv("LOG_LEVEL", "info")
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(out, log.Options{
		Prefix:          component,
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// Discard returns a logger that drops everything. The local terminal game
// uses it when LOG_FILE is unset so log lines never land on the raw screen.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// File opens LOG_FILE for appending. ok is false when the variable is unset
// or the file cannot be opened.
func File() (f *os.File, ok bool) {
	path := config.GetEnv("LOG_FILE", "")
	if path == "" {
		return nil, false
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, false
	}
	return f, true
}

func defaultOutput() io.Writer {
	if f, ok := File(); ok {
		return f
	}
	return os.Stderr
}
