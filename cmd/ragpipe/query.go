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
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/ragpipe/pipeline"
)

func queryCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("usage: ragpipe query <question>")
	}

	components, err := buildComponents(c)
	if err != nil {
		return err
	}
	defer components.Close()

	p, err := components.newPipeline()
	if err != nil {
		return err
	}
	defer p.Release()

	answer, err := p.Run(c.Context, question)
	if err != nil {
		flushLog(c, p)
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(answer)
	return flushLog(c, p)
}

// flushLog writes the pipeline stage log when --log-file is set.
func flushLog(c *cli.Context, p *pipeline.Pipeline) error {
	path := c.String("log-file")
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		return nil
	}
	defer f.Close()
	if err := p.Logger().Flush(f); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log file: %v\n", err)
	}
	return nil
}
