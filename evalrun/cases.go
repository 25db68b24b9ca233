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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/ragpipe/core"
)

// Case is one evaluation question loaded from a test set.
type Case struct {
	ID            core.ID
	Question      string
	TrueAnswer    string
	Metadata      map[string]string
	OriginalIndex int
}

// LoadCases reads a CSV test set with question, true_answer, and
// metadata columns. The metadata column holds a JSON object; single
// quotes are tolerated, and unparseable metadata degrades to empty
// rather than failing the load. Case IDs derive from the question text,
// so reloading the same file yields the same IDs.
func LoadCases(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading test set: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTestSet
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	questionCol, ok := cols["question"]
	if !ok {
		return nil, fmt.Errorf("%w: question", ErrMissingColumn)
	}
	answerCol, ok := cols["true_answer"]
	if !ok {
		return nil, fmt.Errorf("%w: true_answer", ErrMissingColumn)
	}
	metadataCol, hasMetadata := cols["metadata"]

	cases := make([]Case, 0, len(rows)-1)
	for i, row := range rows[1:] {
		question := row[questionCol]
		c := Case{
			ID:            core.IDFromContent(question),
			Question:      question,
			TrueAnswer:    row[answerCol],
			Metadata:      map[string]string{},
			OriginalIndex: i,
		}
		if hasMetadata && metadataCol < len(row) {
			c.Metadata = parseMetadata(row[metadataCol])
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// parseMetadata decodes the metadata cell, tolerating single-quoted
// pseudo-JSON as emitted by some dataset exports.
func parseMetadata(cell string) map[string]string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return map[string]string{}
	}

	out := map[string]string{}
	if err := json.Unmarshal([]byte(cell), &out); err == nil {
		return out
	}

	repaired := strings.ReplaceAll(cell, "'", `"`)
	out = map[string]string{}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return map[string]string{}
	}
	return out
}
