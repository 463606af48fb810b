// Package logging configures the process-wide logrus logger and carries
// request-scoped entries through contexts.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
)

// levelRouter is a logrus hook that writes ERROR and above to stderr and
// everything else to stdout.
type levelRouter struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

func (lr *levelRouter) Levels() []log.Level {
	return log.AllLevels
}

func (lr *levelRouter) Fire(entry *log.Entry) error {
	line, err := entry.Bytes()
	if err != nil {
		return err
	}

	w := lr.stdout
	if entry.Level <= log.ErrorLevel {
		w = lr.stderr
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	_, err = w.Write(line)
	return err
}

// Setup configures the standard logrus logger. If logPath is non-empty, all
// levels are also appended to that file. Returns a cleanup function that
// closes the log file (if opened).
func Setup(level, format, logPath string) (func(), error) {
	cleanup := func() {}

	stdout := io.Writer(os.Stdout)
	stderr := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdout = io.MultiWriter(os.Stdout, f)
		stderr = io.MultiWriter(os.Stderr, f)
	}

	if err := configure(log.StandardLogger(), level, format, stdout, stderr); err != nil {
		cleanup()
		return nil, err
	}
	return cleanup, nil
}

func configure(logger *log.Logger, level, format string, stdout, stderr io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	switch format {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	logger.SetLevel(lvl)
	logger.SetOutput(io.Discard)
	logger.ReplaceHooks(make(log.LevelHooks))
	logger.AddHook(&levelRouter{stdout: stdout, stderr: stderr})
	return nil
}

type contextKey struct{}

// WithEntry returns a copy of ctx carrying entry.
func WithEntry(ctx context.Context, entry *log.Entry) context.Context {
	return context.WithValue(ctx, contextKey{}, entry)
}

// FromContext returns the entry stored in ctx, or one on the standard logger.
func FromContext(ctx context.Context) *log.Entry {
	if entry, ok := ctx.Value(contextKey{}).(*log.Entry); ok {
		return entry
	}
	return log.NewEntry(log.StandardLogger())
}
