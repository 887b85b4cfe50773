package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

const (
	LevelTrace = slog.Level(-8)
	LevelNone  = slog.Level(12)
)

// ParseLevel maps trace|debug|info|warn|error|none onto slog levels.
// Anything else logs errors only.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "none":
		return LevelNone
	default:
		return slog.LevelError
	}
}

// fileWriter appends to a log file and can reopen it after rotation.
type fileWriter struct {
	mu   sync.Mutex
	path string
	f    *os.File
	sigs chan os.Signal
}

func openFileWriter(path string) (*fileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &fileWriter{path: path, f: f}, nil
}

func (w *fileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Write(p)
}

func (w *fileWriter) reopen() error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("could not reopen log file: %w", err)
	}
	w.mu.Lock()
	old := w.f
	w.f = f
	w.mu.Unlock()
	return old.Close()
}

// watchRotation reopens the file on SIGHUP:
//
//	mv qi.log qi.bak && kill -HUP <pid>
func (w *fileWriter) watchRotation() {
	w.sigs = make(chan os.Signal, 1)
	signal.Notify(w.sigs, syscall.SIGHUP)
	go func() {
		for range w.sigs {
			if err := w.reopen(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}()
}

func (w *fileWriter) Close() error {
	if w.sigs != nil {
		signal.Stop(w.sigs)
		close(w.sigs)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds a JSON slog logger writing to file, or to stderr when file is
// empty. The returned closer releases the file.
func Setup(level, file string) (*slog.Logger, io.Closer, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if file != "" {
		w, err := openFileWriter(file)
		if err != nil {
			return nil, nil, err
		}
		w.watchRotation()
		out, closer = w, w
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && a.Value.Any() == LevelTrace {
				a.Value = slog.StringValue("TRACE")
			}
			return a
		},
	})
	return slog.New(handler), closer, nil
}
