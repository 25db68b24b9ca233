package evalrun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingAnswerer records which questions it was asked, for asserting
// that resumed runs skip already-recorded cases.
type countingAnswerer struct {
	mu    sync.Mutex
	asked []string
	fn    func(question string) (string, error)
}

func (a *countingAnswerer) Answer(_ context.Context, question string) (string, error) {
	a.mu.Lock()
	a.asked = append(a.asked, question)
	a.mu.Unlock()
	if a.fn != nil {
		return a.fn(question)
	}
	return "answer to " + question, nil
}

func (a *countingAnswerer) askedQuestions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.asked...)
}

func testCases(n int) []Case {
	cases := make([]Case, n)
	for i := range cases {
		cases[i] = Case{
			Question:      fmt.Sprintf("question %d", i),
			TrueAnswer:    fmt.Sprintf("answer %d", i),
			Metadata:      map[string]string{},
			OriginalIndex: i,
		}
	}
	return cases
}

func TestRunner(t *testing.T) {
	t.Run("evaluates every case and restores order", func(t *testing.T) {
		checkpoint, err := NewRunCheckpoint(t.TempDir(), "testset.csv", nil)
		require.NoError(t, err)

		answerer := &countingAnswerer{}
		runner, err := NewRunner(answerer, checkpoint, WithMaxConcurrent(3))
		require.NoError(t, err)

		cases := testCases(8)
		summary, results, err := runner.Run(context.Background(), cases)
		require.NoError(t, err)

		assert.Equal(t, 8, summary.Total)
		assert.Equal(t, 8, summary.Successful)
		assert.Equal(t, 1.0, summary.SuccessRate)

		require.Len(t, results, 8)
		for i, result := range results {
			assert.Equal(t, i, result.OriginalIndex)
			assert.Equal(t, fmt.Sprintf("question %d", i), result.Question)
			assert.Equal(t, fmt.Sprintf("answer to question %d", i), result.Answer)
			assert.True(t, result.Success)
			assert.Equal(t, checkpoint.RunID(), result.RunID)
		}
	})

	t.Run("failed case is recorded not dropped", func(t *testing.T) {
		checkpoint, err := NewRunCheckpoint(t.TempDir(), "testset.csv", nil)
		require.NoError(t, err)

		answerer := &countingAnswerer{fn: func(question string) (string, error) {
			if question == "question 1" {
				return "", errors.New("upstream timeout")
			}
			return "ok", nil
		}}
		runner, err := NewRunner(answerer, checkpoint, WithMaxConcurrent(2), WithMaxAttempts(1))
		require.NoError(t, err)

		summary, results, err := runner.Run(context.Background(), testCases(3))
		require.NoError(t, err)

		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 2, summary.Successful)
		assert.InDelta(t, 2.0/3.0, summary.SuccessRate, 0.001)

		require.Len(t, results, 3)
		assert.False(t, results[1].Success)
		assert.Contains(t, results[1].Error, "upstream timeout")
		assert.Empty(t, results[1].Answer)
		assert.True(t, results[0].Success)
		assert.True(t, results[2].Success)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		checkpoint, err := NewRunCheckpoint(t.TempDir(), "testset.csv", nil)
		require.NoError(t, err)

		var calls int32
		answerer := &countingAnswerer{fn: func(question string) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("connection reset")
			}
			return "ok", nil
		}}
		runner, err := NewRunner(answerer, checkpoint,
			WithMaxConcurrent(1),
			WithMaxAttempts(3),
			WithRetryDelay(time.Millisecond))
		require.NoError(t, err)

		summary, results, err := runner.Run(context.Background(), testCases(1))
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Successful)
		require.Len(t, results, 1)
		assert.True(t, results[0].Success)
		assert.Len(t, answerer.askedQuestions(), 2)
	})

	t.Run("resumed run skips recorded cases", func(t *testing.T) {
		resultsDir := t.TempDir()
		checkpoint, err := NewRunCheckpoint(resultsDir, "testset.csv", nil)
		require.NoError(t, err)

		cases := testCases(4)

		// Simulate a crashed run that finished two of four cases.
		first := &countingAnswerer{}
		runner, err := NewRunner(first, checkpoint)
		require.NoError(t, err)
		_, _, err = runner.Run(context.Background(), cases[:2])
		require.NoError(t, err)
		assert.Len(t, first.askedQuestions(), 2)

		restored, err := RestoreRunCheckpoint(resultsDir, checkpoint.RunID())
		require.NoError(t, err)

		second := &countingAnswerer{}
		runner, err = NewRunner(second, restored)
		require.NoError(t, err)
		summary, results, err := runner.Run(context.Background(), cases)
		require.NoError(t, err)

		asked := second.askedQuestions()
		assert.ElementsMatch(t, []string{"question 2", "question 3"}, asked)

		assert.Equal(t, 4, summary.Total)
		require.Len(t, results, 4)
		for i, result := range results {
			assert.Equal(t, i, result.OriginalIndex)
		}
	})

	t.Run("rerun of a complete run does nothing", func(t *testing.T) {
		checkpoint, err := NewRunCheckpoint(t.TempDir(), "testset.csv", nil)
		require.NoError(t, err)

		cases := testCases(3)
		answerer := &countingAnswerer{}
		runner, err := NewRunner(answerer, checkpoint)
		require.NoError(t, err)

		_, _, err = runner.Run(context.Background(), cases)
		require.NoError(t, err)
		summary, results, err := runner.Run(context.Background(), cases)
		require.NoError(t, err)

		assert.Len(t, answerer.askedQuestions(), 3)
		assert.Equal(t, 3, summary.Total)
		assert.Len(t, results, 3)
	})

	t.Run("concurrency stays within bound", func(t *testing.T) {
		checkpoint, err := NewRunCheckpoint(t.TempDir(), "testset.csv", nil)
		require.NoError(t, err)

		var (
			mu      sync.Mutex
			active  int
			highest int
		)
		answerer := AnswererFunc(func(_ context.Context, question string) (string, error) {
			mu.Lock()
			active++
			if active > highest {
				highest = active
			}
			mu.Unlock()
			defer func() {
				mu.Lock()
				active--
				mu.Unlock()
			}()
			return "ok", nil
		})

		runner, err := NewRunner(answerer, checkpoint, WithMaxConcurrent(2))
		require.NoError(t, err)

		_, _, err = runner.Run(context.Background(), testCases(10))
		require.NoError(t, err)
		assert.LessOrEqual(t, highest, 2)
	})

	t.Run("writes summary file", func(t *testing.T) {
		checkpoint, err := NewRunCheckpoint(t.TempDir(), "testset.csv", nil)
		require.NoError(t, err)

		runner, err := NewRunner(&countingAnswerer{}, checkpoint)
		require.NoError(t, err)

		summary, _, err := runner.Run(context.Background(), testCases(2))
		require.NoError(t, err)
		assert.Equal(t, checkpoint.RunID(), summary.RunID)

		data, err := os.ReadFile(filepath.Join(checkpoint.Dir(), summaryFileName))
		require.NoError(t, err)
		var onDisk Summary
		require.NoError(t, json.Unmarshal(data, &onDisk))
		assert.Equal(t, summary.Total, onDisk.Total)
		assert.Equal(t, summary.Successful, onDisk.Successful)
	})

	t.Run("nil answerer", func(t *testing.T) {
		checkpoint, err := NewRunCheckpoint(t.TempDir(), "testset.csv", nil)
		require.NoError(t, err)

		_, err = NewRunner(nil, checkpoint)
		assert.True(t, errors.Is(err, ErrAnswererRequired))
	})
}
