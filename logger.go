package liora

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// GenerationLogger records every attempt of a recipe generation run.
type GenerationLogger interface {
	LogAttempt(attempt AttemptLog) error
}

// NewGenerationLogFilePath returns a file path named after the run time and
// a cleaned up model id so runs of different models are easy to tell apart.
func NewGenerationLogFilePath(dir, model string) string {
	name := strings.NewReplacer(":", "_", "/", "_").Replace(strings.ToLower(model))
	return filepath.Join(dir, fmt.Sprintf("%d.%s.json", time.Now().Unix(), name))
}

// AttemptLog is one LLM round trip of a generation stage.
type AttemptLog struct {
	Stage     string    `json:"stage"`
	Attempt   int       `json:"attempt"`
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt,omitempty"`
	Response  string    `json:"response,omitempty"`
	Unmatched []string  `json:"unmatched,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FileGenerationLogger accumulates attempts and writes them on Flush.
type FileGenerationLogger struct {
	mu       sync.Mutex
	attempts []AttemptLog
	writer   io.Writer
}

func NewFileGenerationLogger(writer io.Writer) *FileGenerationLogger {
	return &FileGenerationLogger{
		attempts: make([]AttemptLog, 0),
		writer:   writer,
	}
}

func (l *FileGenerationLogger) LogAttempt(attempt AttemptLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = append(l.attempts, attempt)
	return nil
}

// Flush writes all accumulated attempts to the writer.
func (l *FileGenerationLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"generation_session": map[string]any{
			"timestamp": time.Now(),
			"attempts":  l.attempts,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal generation log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write generation log: %w", err)
	}

	l.attempts = l.attempts[:0]
	return nil
}

type NoOpGenerationLogger struct{}

func NewNoOpGenerationLogger() *NoOpGenerationLogger {
	return &NoOpGenerationLogger{}
}

func (nop *NoOpGenerationLogger) LogAttempt(attempt AttemptLog) error {
	return nil
}

// StdoutGenerationLogger writes each attempt as a JSON line (for Lambda/CloudWatch).
type StdoutGenerationLogger struct {
	out io.Writer
}

func NewStdoutGenerationLogger() *StdoutGenerationLogger {
	return &StdoutGenerationLogger{out: os.Stdout}
}

func (l *StdoutGenerationLogger) LogAttempt(attempt AttemptLog) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
