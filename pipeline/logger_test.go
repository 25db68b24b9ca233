package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/ragpipe/core"
)

func TestLogger(t *testing.T) {
	t.Run("entries keep insertion order", func(t *testing.T) {
		logger := NewLogger()
		logger.Log("search", map[string]any{"num_results": 5})
		logger.LogWarning("scraping", map[string]any{"failed_urls": 1})
		logger.Log("embedding", nil)

		entries := logger.Entries()
		require.Len(t, entries, 3)
		assert.Equal(t, "search", entries[0].Stage)
		assert.Equal(t, core.LogInfo, entries[0].Status)
		assert.Equal(t, "scraping", entries[1].Stage)
		assert.Equal(t, core.LogWarning, entries[1].Status)
		assert.Equal(t, "embedding", entries[2].Stage)
		assert.False(t, entries[0].Timestamp.IsZero())
	})

	t.Run("log error records type and message", func(t *testing.T) {
		logger := NewLogger()
		logger.LogError("retrieval", errors.New("reranker down"), map[string]any{"query": "q"})

		entries := logger.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, core.LogError, entries[0].Status)
		assert.Equal(t, "*errors.errorString", entries[0].Data["error_type"])
		assert.Equal(t, "reranker down", entries[0].Data["error_message"])
		assert.Equal(t, "q", entries[0].Data["query"])
	})

	t.Run("clear drops everything", func(t *testing.T) {
		logger := NewLogger()
		logger.Log("a", nil)
		logger.Clear()
		assert.Empty(t, logger.Entries())
	})

	t.Run("flush writes jsonl and clears", func(t *testing.T) {
		logger := NewLogger()
		logger.Log("search", map[string]any{"n": float64(2)})
		logger.Log("scraping", nil)

		var buf bytes.Buffer
		require.NoError(t, logger.Flush(&buf))
		assert.Empty(t, logger.Entries())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)

		var entry core.LogEntry
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		assert.Equal(t, "search", entry.Stage)
		assert.Equal(t, core.LogInfo, entry.Status)
		assert.Equal(t, float64(2), entry.Data["n"])
	})

	t.Run("concurrent appends", func(t *testing.T) {
		logger := NewLogger()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				logger.Log("stage", nil)
			}()
		}
		wg.Wait()
		assert.Len(t, logger.Entries(), 50)
	})

	t.Run("entries returns a copy", func(t *testing.T) {
		logger := NewLogger()
		logger.Log("a", nil)
		entries := logger.Entries()
		entries[0].Stage = "mutated"
		assert.Equal(t, "a", logger.Entries()[0].Stage)
	})
}
