// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/ragpipe/core"
)

// defaultMaxEntries bounds the in-memory log buffer. When the buffer is
// full the oldest entries are dropped.
const defaultMaxEntries = 10000

// Logger collects structured pipeline events in memory. One logger
// serves a whole run: interactive callers read Entries after each turn,
// batch callers Clear between cases and Flush at the end.
// All methods are safe for concurrent use.
type Logger struct {
	mu         sync.Mutex
	entries    []core.LogEntry
	maxEntries int
}

// NewLogger creates an empty logger.
func NewLogger() *Logger {
	return &Logger{maxEntries: defaultMaxEntries}
}

// Log appends an info entry for the given stage.
func (l *Logger) Log(stage string, data map[string]any) {
	l.append(core.LogEntry{
		Timestamp: time.Now().UTC(),
		Stage:     stage,
		Status:    core.LogInfo,
		Data:      data,
	})
}

// LogWarning appends a warning entry for the given stage.
func (l *Logger) LogWarning(stage string, data map[string]any) {
	l.append(core.LogEntry{
		Timestamp: time.Now().UTC(),
		Stage:     stage,
		Status:    core.LogWarning,
		Data:      data,
	})
}

// LogError appends an error entry recording the error's concrete type
// and message alongside any additional context.
func (l *Logger) LogError(stage string, err error, data map[string]any) {
	merged := make(map[string]any, len(data)+2)
	for k, v := range data {
		merged[k] = v
	}
	if err != nil {
		merged["error_type"] = fmt.Sprintf("%T", err)
		merged["error_message"] = err.Error()
	}
	l.append(core.LogEntry{
		Timestamp: time.Now().UTC(),
		Stage:     stage,
		Status:    core.LogError,
		Data:      merged,
	})
}

func (l *Logger) append(entry core.LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.maxEntries {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the buffered entries in insertion order.
func (l *Logger) Entries() []core.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]core.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear drops all buffered entries.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Flush writes the buffered entries to w as JSONL, one entry per line,
// and clears the buffer on success.
func (l *Logger) Flush(w io.Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	enc := json.NewEncoder(w)
	for _, entry := range l.entries {
		if err := enc.Encode(entry); err != nil {
			return err
		}
	}
	l.entries = l.entries[:0]
	return nil
}
