// Package log provides the hgstat debug log.
// Messages are buffered until a destination is chosen with SetFile or
// SetOutput, so nothing logged during startup is lost.
package log

import (
	"io"
	"log"
	"os"
	"sync"
)

// DebugLogger is the io.Writer behind the package-level logger.
type DebugLogger struct {
	mu      sync.Mutex
	file    *os.File
	out     io.Writer
	buffer  []byte
	discard bool
}

var (
	globalDebugLogger = &DebugLogger{}
	stdLogger         = log.New(globalDebugLogger, "", log.LstdFlags|log.Lmicroseconds)
)

// Write implements io.Writer.
func (l *DebugLogger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.discard:
		return len(p), nil
	case l.out != nil:
		n, err := l.out.Write(p)
		if l.file != nil {
			// sync errors are not worth failing a log call over
			_ = l.file.Sync()
		}
		return n, err
	}

	// p may be reused by the caller
	l.buffer = append(l.buffer, p...)
	return len(p), nil
}

// flushLocked writes pending buffered output to the current destination.
func (l *DebugLogger) flushLocked() {
	if len(l.buffer) == 0 || l.out == nil {
		return
	}
	_, _ = l.out.Write(l.buffer)
	l.buffer = nil
}

// closeFileLocked closes a previously opened log file.
func (l *DebugLogger) closeFileLocked() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	if l.out == io.Writer(l.file) {
		l.out = nil
	}
	l.file = nil
	return err
}

// SetFile appends the log to path, creating it if needed.
// An empty path discards buffered and future messages.
func SetFile(path string) error {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	_ = globalDebugLogger.closeFileLocked()

	if path == "" {
		globalDebugLogger.out = nil
		globalDebugLogger.discard = true
		globalDebugLogger.buffer = nil
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		globalDebugLogger.out = nil
		globalDebugLogger.discard = true
		globalDebugLogger.buffer = nil
		return err
	}

	globalDebugLogger.file = f
	globalDebugLogger.out = f
	globalDebugLogger.discard = false
	globalDebugLogger.flushLocked()
	_ = f.Sync()
	return nil
}

// SetOutput streams the log to w, typically os.Stderr for --verbose.
// A nil writer discards everything.
func SetOutput(w io.Writer) {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	_ = globalDebugLogger.closeFileLocked()

	if w == nil {
		globalDebugLogger.out = nil
		globalDebugLogger.discard = true
		globalDebugLogger.buffer = nil
		return
	}
	globalDebugLogger.out = w
	globalDebugLogger.discard = false
	globalDebugLogger.flushLocked()
}

// Printf writes a formatted message.
func Printf(format string, args ...any) {
	stdLogger.Printf(format, args...)
}

// Println writes a message.
func Println(v ...any) {
	stdLogger.Println(v...)
}

// Close closes the log file if one is open.
func Close() error {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	return globalDebugLogger.closeFileLocked()
}
