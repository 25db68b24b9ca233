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

// Package evalrun is the batch evaluation harness. It runs a CSV test
// set of question/answer pairs against any Answerer under a bounded
// concurrency pool, appending each result to an on-disk JSONL store as
// it completes.
//
// Runs checkpoint to a directory named by run ID. Restoring a run ID
// reloads the store and skips every question that already has a
// recorded result, so an interrupted run resumes where it stopped and
// loses at most the cases that were in flight. The final ordering of
// results always follows the test set, regardless of completion order.
package evalrun
