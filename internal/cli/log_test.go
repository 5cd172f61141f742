package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{log.InfoLevel, func(l *log.Logger) { l.Info("ring", "index", 0) }, true},
		{log.InfoLevel, func(l *log.Logger) { l.Debug("ring", "index", 0) }, false},
		{log.DebugLevel, func(l *log.Logger) { l.Debug("ring", "index", 0) }, true},
		{log.WarnLevel, func(l *log.Logger) { l.Info("ring", "index", 0) }, false},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		tt.emit(newLogger(&buf, tt.level))
		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("level %v: logged = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(10 * time.Millisecond)
	prog.done("generated", "instances", 200)

	out := buf.String()
	for _, want := range []string{"generated", "instances=200", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress.done() output missing %q: %q", want, out)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := parseLogLevel("warn")
	if err != nil || level != log.WarnLevel {
		t.Errorf("parseLogLevel(warn) = %v, %v", level, err)
	}
	_, err = parseLogLevel("loud")
	if !apperr.Is(err, apperr.ErrCodeConfiguration) {
		t.Errorf("parseLogLevel(loud) error = %v, want CONFIGURATION", err)
	}
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, log.InfoLevel))

	componentLogger(ctx, "scene").Info("ring", "index", 0)
	if !strings.Contains(buf.String(), "scene") {
		t.Errorf("prefix missing: %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext should fall back to log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	loggerFromContext(ctx).Info("solved")
	if !strings.Contains(buf.String(), "solved") {
		t.Errorf("attached logger output = %q", buf.String())
	}
}
