// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup routes the global logger to w as human readable console output. The
// level is info, debug when verbose, or whatever LIGHTLINE_LOG names.
func Setup(w io.Writer, verbose bool) {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !isTerminal(w)})
	zerolog.SetGlobalLevel(Level(os.Getenv("LIGHTLINE_LOG"), verbose))
}

// Level resolves the log level from an env value and the verbose flag. An
// explicit env level wins.
func Level(env string, verbose bool) zerolog.Level {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(env))); err == nil && env != "" {
		return lvl
	}
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// Discard silences all logging, for the TUI which owns the terminal.
func Discard() {
	log.Logger = zerolog.New(io.Discard)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice != 0
}
