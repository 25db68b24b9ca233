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

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/ragpipe/ai"
	"github.com/poiesic/ragpipe/core"
	"github.com/poiesic/ragpipe/evalrun"
	"github.com/poiesic/ragpipe/pipeline"
)

const caseLogDirName = "pipeline_logs"

// evalCommand runs the full pipeline over a test set. Each case gets a
// fresh pipeline over the shared collaborators, so cases run
// concurrently without sharing conversation state. Every case's stage
// log is flushed into the run directory, failed turns included.
func evalCommand(c *cli.Context) error {
	components, err := buildComponents(c)
	if err != nil {
		return err
	}
	defer components.Close()

	makeAnswerer := func(checkpoint *evalrun.RunCheckpoint) evalrun.Answerer {
		logsDir := filepath.Join(checkpoint.Dir(), caseLogDirName)
		return evalrun.AnswererFunc(func(ctx context.Context, question string) (string, error) {
			p, err := components.newPipeline()
			if err != nil {
				return "", err
			}
			defer p.Release()

			answer, runErr := p.Run(ctx, question)
			if logErr := writeCaseLog(logsDir, question, p.Logger()); logErr != nil {
				fmt.Fprintf(os.Stderr, "failed to write case log: %v\n", logErr)
			}
			return answer, runErr
		})
	}

	return runEvaluation(c, makeAnswerer, map[string]string{
		"mode":            "pipeline",
		"embedding_model": c.String("embedding-model"),
		"llm_model":       c.String("llm-model"),
		"searxng_url":     c.String("searxng-url"),
	})
}

// evalBaseCommand runs the bare completion model over a test set, no
// search and no retrieval, for a baseline to compare the pipeline
// against.
func evalBaseCommand(c *cli.Context) error {
	provider, err := buildAIProvider(c)
	if err != nil {
		return err
	}
	defer provider.Close()

	generator := provider.Generator()
	makeAnswerer := func(*evalrun.RunCheckpoint) evalrun.Answerer {
		return evalrun.AnswererFunc(func(ctx context.Context, question string) (string, error) {
			return generator.Generate(ctx, []core.Message{
				{Role: core.RoleUser, Content: question},
			}, ai.WithTemperature(0.0))
		})
	}

	return runEvaluation(c, makeAnswerer, map[string]string{
		"mode":      "baseline",
		"llm_model": c.String("llm-model"),
	})
}

// writeCaseLog flushes a pipeline's stage log into the run's log
// directory as JSONL, one file per question. Retried cases append to
// the same file.
func writeCaseLog(dir, question string, logger *pipeline.Logger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("case_%d.jsonl", core.IDFromContent(question)))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return logger.Flush(f)
}

func runEvaluation(c *cli.Context, makeAnswerer func(*evalrun.RunCheckpoint) evalrun.Answerer, config map[string]string) error {
	cases, err := evalrun.LoadCases(c.String("test-set"))
	if err != nil {
		return fmt.Errorf("failed to load test set: %w", err)
	}
	if len(cases) == 0 {
		return fmt.Errorf("test set has no cases")
	}

	var checkpoint *evalrun.RunCheckpoint
	if runID := c.String("restore"); runID != "" {
		checkpoint, err = evalrun.RestoreRunCheckpoint(c.String("results-dir"), runID)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Resuming run %s\n", runID)
	} else {
		checkpoint, err = evalrun.NewRunCheckpoint(c.String("results-dir"), c.String("test-set"), config)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Starting run %s\n", checkpoint.RunID())
	}

	progress := evalrun.NewProgressTracker(os.Stderr, len(cases), c.Int("report-interval"))
	runner, err := evalrun.NewRunner(makeAnswerer(checkpoint), checkpoint,
		evalrun.WithMaxConcurrent(c.Int("max-concurrent")),
		evalrun.WithMaxAttempts(c.Int("max-retries")),
		evalrun.WithProgress(progress),
	)
	if err != nil {
		return err
	}

	summary, _, err := runner.Run(c.Context, cases)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Run directory: %s\n", checkpoint.Dir())
	fmt.Fprintf(os.Stderr, "Cases: %d, successful: %d (%.1f%%)\n",
		summary.Total, summary.Successful, summary.SuccessRate*100)
	fmt.Fprintf(os.Stderr, "Duration: %.1fs (%.1fs per case)\n",
		summary.DurationSecs, summary.AvgPerCaseSecs)
	return nil
}
