// Package logging builds the process-wide structured logger every command
// and long-lived component writes through, using github.com/lmittmann/tint
// over log/slog for colorized, human-readable output the way
// NSXBet-sql-reviewer's dependency set does (its go.mod pulls in
// lmittmann/tint alongside spf13/cobra/viper for exactly this kind of CLI
// logging setup).
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Level aliases slog.Level so callers don't need a direct log/slog import
// just to pick a verbosity.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Options configures New.
type Options struct {
	// Writer defaults to os.Stderr.
	Writer io.Writer
	// Level defaults to LevelInfo.
	Level Level
	// NoColor disables ANSI colors, e.g. when stderr isn't a terminal.
	NoColor bool
}

// New builds a *slog.Logger backed by tint's handler: timestamped,
// colorized key=value output on a terminal, matching what a developer
// running `pgls check` against a TTY expects to see.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handler := tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.Kitchen,
		NoColor:    opts.NoColor,
	})
	return slog.New(handler)
}

// Default returns a logger at LevelInfo writing to os.Stderr, the shape
// used whenever a caller hasn't set up anything more specific.
func Default() *slog.Logger {
	return New(Options{})
}
