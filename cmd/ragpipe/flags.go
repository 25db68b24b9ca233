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
	"github.com/urfave/cli/v2"

	"github.com/poiesic/ragpipe/evalrun"
	"github.com/poiesic/ragpipe/pipeline"
)

// aiFlags configure the embedding and completion services. Both the
// pipeline commands and the baseline evaluation need these.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:8000/v1",
		},
		&cli.StringFlag{
			Name:  "llm-host",
			Usage: "Completion service host URL",
			Value: "http://localhost:8001/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "text-embedding-3-small",
		},
		&cli.StringFlag{
			Name:  "llm-model",
			Usage: "Completion model name",
			Value: "gpt-4o-2024-08-06",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for both services",
			Value:   "none",
			EnvVars: []string{"RAGPIPE_API_KEY"},
		},
	}
}

// pipelineFlags configure a full retrieval pipeline: search, scraping,
// reranking, and the AI services.
func pipelineFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "searxng-url",
			Usage:    "SearXNG instance URL",
			Required: true,
			EnvVars:  []string{"RAGPIPE_SEARXNG_URL"},
		},
		&cli.StringFlag{
			Name:    "searxng-api-key",
			Usage:   "API key sent to the SearXNG instance",
			EnvVars: []string{"RAGPIPE_SEARXNG_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "engines",
			Usage: "Comma-separated search engines to query",
		},
		&cli.StringFlag{
			Name:     "reranker-url",
			Usage:    "Reranker service endpoint URL",
			Required: true,
			EnvVars:  []string{"RAGPIPE_RERANKER_URL"},
		},
		&cli.StringFlag{
			Name:  "reranker-model",
			Usage: "Reranker model name",
		},
		&cli.StringFlag{
			Name:    "reranker-api-key",
			Usage:   "API key for the reranker service",
			EnvVars: []string{"RAGPIPE_RERANKER_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "cache-db",
			Usage: "Path to the BadgerDB page cache directory (in-memory if empty)",
		},
		&cli.IntFlag{
			Name:  "max-sources",
			Usage: "Maximum number of pages to scrape per query",
			Value: pipeline.DefaultMaxSources,
		},
		&cli.IntFlag{
			Name:  "scrape-concurrency",
			Usage: "Number of pages fetched at once",
			Value: 5,
		},
		&cli.BoolFlag{
			Name:  "no-enhance",
			Usage: "Disable query enhancement, search the user query verbatim",
		},
	}
	return append(flags, aiFlags()...)
}

// evalFlags configure an evaluation run.
func evalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "test-set",
			Aliases:  []string{"t"},
			Usage:    "Path to the CSV test set (question, true_answer, metadata)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "results-dir",
			Usage: "Directory holding evaluation run directories",
			Value: "eval_results",
		},
		&cli.StringFlag{
			Name:  "restore",
			Usage: "Run ID of an interrupted run to resume",
		},
		&cli.IntFlag{
			Name:  "max-concurrent",
			Usage: "Number of cases evaluated at once",
			Value: evalrun.DefaultMaxConcurrent,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum attempts per case before recording a failure",
			Value: evalrun.DefaultMaxAttempts,
		},
		&cli.IntFlag{
			Name:  "report-interval",
			Usage: "Report progress every N cases",
			Value: 1,
		},
	}
}

func logFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "log-file",
		Usage: "Write the pipeline stage log to this JSONL file",
	}
}
