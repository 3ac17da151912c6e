package log

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/term"
)

var (
	mu      sync.Mutex
	logFile *os.File
	buf     *bufio.Writer
)

// lockedWriter lets FlushLog run while handlers are writing.
type lockedWriter struct{}

func (lockedWriter) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	if buf == nil {
		return len(p), nil
	}
	return buf.Write(p)
}

// NewLogger logs to stdout, and to a buffered file under logDir when logDir
// is set. Text on a terminal, JSON otherwise.
func NewLogger(debug bool, logDir, name string) (*slog.Logger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}

		prefix := "questengine"
		if name != "" {
			prefix += "-" + name
		}
		fileName := filepath.Join(logDir, fmt.Sprintf("%s-%s.log", prefix, time.Now().Format("2006-01-02-15-04-05")))

		f, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}

		mu.Lock()
		logFile = f
		buf = bufio.NewWriterSize(f, 16*1024)
		mu.Unlock()

		out = io.MultiWriter(os.Stdout, lockedWriter{})
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stdout.Fd())) {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler), nil
}

func FlushLog() {
	mu.Lock()
	defer mu.Unlock()
	if buf != nil {
		_ = buf.Flush()
	}
}

func FlushAndClose() {
	mu.Lock()
	defer mu.Unlock()
	if buf != nil {
		_ = buf.Flush()
		buf = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
