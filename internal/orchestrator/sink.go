package orchestrator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/duetsim/duet/pkg/models"
)

// Sink appends log entries to a JSON Lines file: one UTF-8 JSON object
// per line, append mode. Appends are mutex-guarded so a sink may be
// shared across runs; no transactional guarantee beyond that is made.
type Sink struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewSink opens (creating if necessary) the JSONL file at path for
// appending. Parent directories are created.
func NewSink(path string) (*Sink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Sink{file: f, path: path}, nil
}

// Path returns the sink's file path.
func (s *Sink) Path() string { return s.path }

// Append writes one entry as a single JSON line.
func (s *Sink) Append(entry models.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

// Close releases the underlying file handle.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// ReadEntries loads every entry from a JSONL file produced by a Sink.
// Used by the analysis and conversion commands.
func ReadEntries(path string) ([]models.LogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	var entries []models.LogEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e models.LogEntry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode log entry %d: %w", len(entries), err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
