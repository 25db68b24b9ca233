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

package evalrun

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Answerer produces an answer for one evaluation question. The full
// pipeline and a bare generator both satisfy it, which is what lets the
// same harness run retrieval and baseline evaluations.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// AnswererFunc adapts a function to the Answerer interface.
type AnswererFunc func(ctx context.Context, question string) (string, error)

// Answer implements Answerer.
func (f AnswererFunc) Answer(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

// Summary is the aggregate outcome of a run, computed after every case
// has a recorded result.
type Summary struct {
	RunID          string  `json:"run_id"`
	Total          int     `json:"total_cases"`
	Successful     int     `json:"successful_cases"`
	SuccessRate    float64 `json:"success_rate"`
	DurationSecs   float64 `json:"evaluation_duration_seconds"`
	AvgPerCaseSecs float64 `json:"average_time_per_case_seconds"`
	MaxConcurrent  int     `json:"concurrent_requests_used"`
}

// DefaultMaxConcurrent bounds how many cases run at once.
const DefaultMaxConcurrent = 5

// Retry defaults for transient answerer failures.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
)

// Runner drives an evaluation over a test set: concurrent case
// execution through a bounded pool, per-case results appended to the
// checkpoint's store as they complete, and resume on restart.
type Runner struct {
	answerer      Answerer
	checkpoint    *RunCheckpoint
	maxConcurrent int
	maxAttempts   int
	retryDelay    time.Duration
	progress      *ProgressTracker
	logger        *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMaxConcurrent sets how many cases may run at once. Default is 5.
func WithMaxConcurrent(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxConcurrent = n
		}
	}
}

// WithMaxAttempts sets how many times a case is tried before its
// failure is recorded. Default is 3.
func WithMaxAttempts(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the base delay between attempts.
func WithRetryDelay(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.retryDelay = d
		}
	}
}

// WithProgress attaches a progress tracker.
func WithProgress(progress *ProgressTracker) RunnerOption {
	return func(r *Runner) {
		r.progress = progress
	}
}

// NewRunner creates a runner writing results into checkpoint.
func NewRunner(answerer Answerer, checkpoint *RunCheckpoint, opts ...RunnerOption) (*Runner, error) {
	if answerer == nil {
		return nil, ErrAnswererRequired
	}
	r := &Runner{
		answerer:      answerer,
		checkpoint:    checkpoint,
		maxConcurrent: DefaultMaxConcurrent,
		maxAttempts:   DefaultMaxAttempts,
		retryDelay:    DefaultRetryDelay,
		logger:        slog.Default().With("component", "evalrun"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run evaluates all cases not already recorded in the store, then
// returns the summary over the complete result set ordered by original
// index. Each case's result is appended as soon as it finishes, so an
// interrupted run loses at most in-flight cases.
func (r *Runner) Run(ctx context.Context, cases []Case) (Summary, []Result, error) {
	store := r.checkpoint.Store()

	_, processed, err := store.Load()
	if err != nil {
		return Summary{}, nil, err
	}

	remaining := make([]Case, 0, len(cases))
	for _, c := range cases {
		if processed[c.Question] {
			continue
		}
		remaining = append(remaining, c)
	}
	r.logger.Info("starting evaluation",
		"run_id", r.checkpoint.RunID(),
		"total", len(cases),
		"already_processed", len(cases)-len(remaining),
		"remaining", len(remaining),
		"max_concurrent", r.maxConcurrent)

	if r.progress != nil {
		r.progress.Start()
	}

	pool, err := ants.NewPool(r.maxConcurrent)
	if err != nil {
		return Summary{}, nil, err
	}
	defer pool.Release()

	start := time.Now()

	var (
		wg       sync.WaitGroup
		appendMu sync.Mutex
		appendEr error
	)
	for _, c := range remaining {
		c := c
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			result := r.evaluateCase(ctx, c)
			if err := store.Append(result); err != nil {
				r.logger.Error("failed to record result", "question", c.Question, "error", err)
				appendMu.Lock()
				if appendEr == nil {
					appendEr = err
				}
				appendMu.Unlock()
			}
			if r.progress != nil {
				r.progress.Increment(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			appendMu.Lock()
			if appendEr == nil {
				appendEr = submitErr
			}
			appendMu.Unlock()
		}
	}
	wg.Wait()

	if r.progress != nil {
		r.progress.Finish()
	}
	if appendEr != nil {
		return Summary{}, nil, appendEr
	}

	duration := time.Since(start)

	// Reload the full store: this run's results plus any from before a
	// restart, restored to test set order.
	results, _, err := store.Load()
	if err != nil {
		return Summary{}, nil, err
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OriginalIndex < results[j].OriginalIndex
	})

	summary := r.summarize(results, duration, len(remaining))
	if err := r.checkpoint.WriteSummary(summary); err != nil {
		return Summary{}, nil, err
	}

	r.logger.Info("evaluation complete",
		"run_id", summary.RunID,
		"total", summary.Total,
		"successful", summary.Successful,
		"success_rate", summary.SuccessRate)
	return summary, results, nil
}

// evaluateCase runs one case and always produces a Result; an answerer
// failure is recorded, never propagated.
func (r *Runner) evaluateCase(ctx context.Context, c Case) Result {
	result := Result{
		CaseID:        fmt.Sprintf("%d", c.ID),
		Question:      c.Question,
		TrueAnswer:    c.TrueAnswer,
		Metadata:      c.Metadata,
		OriginalIndex: c.OriginalIndex,
		RunID:         r.checkpoint.RunID(),
	}

	var answer string
	err := RetryWithBackoff(ctx, func() error {
		var answerErr error
		answer, answerErr = r.answerer.Answer(ctx, c.Question)
		return answerErr
	}, r.maxAttempts, r.retryDelay)
	if err != nil {
		r.logger.Warn("case failed", "question", c.Question, "error", err)
		result.Success = false
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Answer = answer
	return result
}

func (r *Runner) summarize(results []Result, duration time.Duration, attempted int) Summary {
	successful := 0
	for _, res := range results {
		if res.Success {
			successful++
		}
	}

	summary := Summary{
		RunID:         r.checkpoint.RunID(),
		Total:         len(results),
		Successful:    successful,
		DurationSecs:  duration.Seconds(),
		MaxConcurrent: r.maxConcurrent,
	}
	if len(results) > 0 {
		summary.SuccessRate = float64(successful) / float64(len(results))
	}
	if attempted > 0 {
		summary.AvgPerCaseSecs = duration.Seconds() / float64(attempted)
	}
	return summary
}
