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


package core

import "errors"

// Domain validation errors
var (
	// ErrEmptyQuery indicates an empty or whitespace-only query string.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmptyContent indicates a chunk with no content.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrMissingSourceURL indicates a chunk without source provenance.
	ErrMissingSourceURL = errors.New("chunk must carry a source URL")
)
