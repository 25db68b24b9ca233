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
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// ResultStore is an append-only JSONL file of case results. Appends
// from concurrent workers are serialized through a single mutex, and
// each record is flushed before the append returns, so every line in
// the file is a complete record even after a crash.
type ResultStore struct {
	mu   sync.Mutex
	path string
}

// NewResultStore creates a store writing to path. The file is created
// on first append; an existing file is appended to, never truncated.
func NewResultStore(path string) *ResultStore {
	return &ResultStore{path: path}
}

// Path returns the store's file path.
func (s *ResultStore) Path() string {
	return s.path
}

// Append writes one result as a JSONL line. Safe for concurrent use.
func (s *ResultStore) Append(result Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// Load reads all recorded results and the set of questions already
// processed. A missing file is an empty store, not an error.
func (s *ResultStore) Load() ([]Result, map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Result{}, map[string]bool{}, nil
		}
		return nil, nil, err
	}
	defer f.Close()

	var results []Result
	processed := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var result Result
		if err := json.Unmarshal(line, &result); err != nil {
			return nil, nil, fmt.Errorf("corrupt result line: %w", err)
		}
		results = append(results, result)
		processed[result.Question] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return results, processed, nil
}
