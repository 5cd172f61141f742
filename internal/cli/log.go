// Package cli implements the ringtower command-line interface.
//
// The commands load ring sets from TOML files, JSON snapshots or exported
// GLB files, run them through a pipeline studio and write scenes, plans
// and painted GLB exports. The CLI is built using cobra and logs with
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - solve: Solve and stack a ring set and print its parameters
//   - generate: Place every module and print the scene tree
//   - export / import: Write painted GLBs and read their rings back
//   - plan: Draw the ring stack as a Graphviz diagram
//   - edit: Interactive terminal editor
//   - watch: Regenerate whenever a ring file changes
//   - serve: HTTP API over a single studio
//   - store / cache: Manage exported assets and the download cache
//
// # Configuration
//
// Settings are read from ~/.config/ringtower/config.toml and RINGTOWER_*
// environment variables; flags win over both.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging; log_level in
// the config file or RINGTOWER_LOG_LEVEL picks another default. Loggers are
// passed through context.Context and log key/value pairs.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
)

// newLogger creates a logger writing to w at level, with "15:04:05.00"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLogLevel accepts debug, info, warn, error and fatal.
func parseLogLevel(s string) (log.Level, error) {
	level, err := log.ParseLevel(s)
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrCodeConfiguration, err, "invalid log level %q", s)
	}
	return level, nil
}

// progress logs the completion of an operation with its elapsed time.
// Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and an "elapsed" pair rounded to the
// millisecond, e.g. `generated instances=200 rings=1 elapsed=12ms`.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() so commands always have one.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// componentLogger returns the context logger prefixed with name.
func componentLogger(ctx context.Context, name string) *log.Logger {
	return loggerFromContext(ctx).WithPrefix(name)
}
