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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// RunMetadata describes an evaluation run. It is written once when the
// run is created and never modified afterwards.
type RunMetadata struct {
	RunID       string            `json:"run_id"`
	Timestamp   string            `json:"timestamp"`
	TestSetPath string            `json:"test_set_path"`
	Config      map[string]string `json:"config,omitempty"`
}

// RunCheckpoint is the on-disk layout of one evaluation run: a
// directory holding immutable metadata, the append-only result store,
// and a summary written once at completion.
type RunCheckpoint struct {
	dir      string
	metadata RunMetadata
	store    *ResultStore
}

const (
	runDirPrefix     = "eval_run_"
	metadataFileName = "run_metadata.json"
	resultsFileName  = "results.jsonl"
	summaryFileName  = "summary.json"
)

// NewRunCheckpoint creates a fresh run directory under resultsDir with
// a random run ID and writes its metadata.
func NewRunCheckpoint(resultsDir, testSetPath string, config map[string]string) (*RunCheckpoint, error) {
	runID := uuid.New().String()
	dir := filepath.Join(resultsDir, runDirPrefix+runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	metadata := RunMetadata{
		RunID:       runID,
		Timestamp:   time.Now().UTC().Format("20060102_150405"),
		TestSetPath: testSetPath,
		Config:      config,
	}
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFileName), data, 0644); err != nil {
		return nil, err
	}

	return &RunCheckpoint{
		dir:      dir,
		metadata: metadata,
		store:    NewResultStore(filepath.Join(dir, resultsFileName)),
	}, nil
}

// RestoreRunCheckpoint opens an existing run directory by run ID so a
// crashed or interrupted run can continue. Metadata is read back, never
// rewritten.
func RestoreRunCheckpoint(resultsDir, runID string) (*RunCheckpoint, error) {
	dir := filepath.Join(resultsDir, runDirPrefix+runID)
	data, err := os.ReadFile(filepath.Join(dir, metadataFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var metadata RunMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("reading run metadata: %w", err)
	}

	return &RunCheckpoint{
		dir:      dir,
		metadata: metadata,
		store:    NewResultStore(filepath.Join(dir, resultsFileName)),
	}, nil
}

// RunID returns the run's identifier.
func (c *RunCheckpoint) RunID() string {
	return c.metadata.RunID
}

// Metadata returns the run's immutable metadata.
func (c *RunCheckpoint) Metadata() RunMetadata {
	return c.metadata
}

// Dir returns the run directory path.
func (c *RunCheckpoint) Dir() string {
	return c.dir
}

// Store returns the run's result store.
func (c *RunCheckpoint) Store() *ResultStore {
	return c.store
}

// WriteSummary records the run summary. Called once at completion.
func (c *RunCheckpoint) WriteSummary(summary Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, summaryFileName), data, 0644)
}
