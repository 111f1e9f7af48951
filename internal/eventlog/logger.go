// Package eventlog records capture and upload events in a JSON lines file.
package eventlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event.
type EventType string

// Capture event types.
const (
	CaptureStarted  EventType = "capture_started"
	CaptureFinished EventType = "capture_finished"
	CaptureFailed   EventType = "capture_failed"
)

// Upload event types.
const (
	UploadCompleted EventType = "upload_completed"
	UploadFailed    EventType = "upload_failed"
)

// Event represents a single log entry with type-specific details.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Type      EventType `json:"type"`
	CaptureID string    `json:"capture_id,omitempty"`
	Message   string    `json:"msg,omitempty"`
	Details   *Details  `json:"details,omitempty"`
}

// Details contains capture- and upload-specific event fields.
type Details struct {
	ResultType   string   `json:"result_type,omitempty"`
	Size         string   `json:"size,omitempty"`
	Position     string   `json:"position,omitempty"`
	Acceleration string   `json:"acceleration,omitempty"`
	Audio        string   `json:"audio,omitempty"`
	Destination  string   `json:"destination,omitempty"`
	Args         []string `json:"args,omitempty"`
	ExitCode     *int     `json:"exit_code,omitempty"`
	DurationMs   int64    `json:"duration_ms,omitempty"`
	S3Key        string   `json:"s3_key,omitempty"`
	SizeBytes    int64    `json:"size_bytes,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Logger writes events to a JSON lines file. It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
}

// NewLogger creates a new event logger at the specified path.
func NewLogger(filePath string) (*Logger, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// Log writes an event to the log file. A nil Logger discards events.
func (l *Logger) Log(event *Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return l.encoder.Encode(event)
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// MaxReadLimit is the maximum number of events that can be read at once.
const MaxReadLimit = 500

// ReadLast returns up to n events from the log, newest first.
// Malformed lines are skipped and a missing file yields no events.
func ReadLast(filePath string, n int) ([]Event, error) {
	n = min(n, MaxReadLimit)
	if n <= 0 {
		return []Event{}, nil
	}

	file, err := os.Open(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return []Event{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck // Read-only operation, close error not critical

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	events := make([]Event, 0, n)
	for i := len(lines) - 1; i >= 0 && len(events) < n; i-- {
		var event Event
		if err := json.Unmarshal([]byte(lines[i]), &event); err != nil {
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

// IsCaptureEvent returns true if the event type is a capture event.
func IsCaptureEvent(t EventType) bool {
	return t == CaptureStarted || t == CaptureFinished || t == CaptureFailed
}

// IsUploadEvent returns true if the event type is an upload event.
func IsUploadEvent(t EventType) bool {
	return t == UploadCompleted || t == UploadFailed
}
