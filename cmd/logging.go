package cmd

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// appTarget is the directive target that addresses this program in LOG,
// as in LOG=argus=debug.
const appTarget = "argus"

// newLogger returns the console logger every host worker derives from. The
// writer is wrapped so concurrent hosts never interleave partial lines.
func newLogger(w io.Writer, filter string) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	return zerolog.New(zerolog.SyncWriter(out)).
		Level(parseLogFilter(filter)).
		With().Timestamp().Logger()
}

// parseLogFilter reads comma separated directives such as "debug" or
// "argus=trace,warn". A directive aimed at argus beats a bare level; other
// targets are ignored. Within each kind the last directive wins. The default
// is info.
func parseLogFilter(raw string) zerolog.Level {
	global, scoped := zerolog.NoLevel, zerolog.NoLevel
	for _, d := range strings.Split(raw, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		target, lvl, scopedDirective := strings.Cut(d, "=")
		if !scopedDirective {
			if l, ok := parseLevel(target); ok {
				global = l
			}
			continue
		}
		if target != appTarget && !strings.HasPrefix(target, appTarget+"::") {
			continue
		}
		if l, ok := parseLevel(lvl); ok {
			scoped = l
		}
	}
	switch {
	case scoped != zerolog.NoLevel:
		return scoped
	case global != zerolog.NoLevel:
		return global
	}
	return zerolog.InfoLevel
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "off", "none", "disabled":
		return zerolog.Disabled, true
	}
	return zerolog.NoLevel, false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
