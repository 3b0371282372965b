package orchestrator

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventLog records operational events for a run: lifecycle transitions,
// turn failures, retries. Events always go to the process log; when
// backed by a file they are additionally appended there. A nil *EventLog
// is valid and logs to the process log only.
type EventLog struct {
	mu   sync.Mutex
	file *os.File
}

// NewEventLog creates an event log writing to the given path, creating
// parent directories. An empty path returns a process-log-only EventLog.
func NewEventLog(path string) (*EventLog, error) {
	if path == "" {
		return &EventLog{}, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create event log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	return &EventLog{file: f}, nil
}

// Logf records one event.
func (l *EventLog) Logf(format string, args ...any) {
	log.Printf(format, args...)

	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	line := fmt.Sprintf("[%s] %s\n", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
	l.file.WriteString(line)
}

// Close releases the underlying file handle, if any.
func (l *EventLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
