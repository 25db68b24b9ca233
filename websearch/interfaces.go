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

package websearch

import (
	"context"

	"github.com/poiesic/ragpipe/core"
)

// Provider performs web searches against an external search service.
type Provider interface {
	// Search runs a single query and returns up to numResults hits.
	// A query that matches nothing returns an empty slice and nil error;
	// only transport or service failures return an error.
	Search(ctx context.Context, query string, numResults int) ([]core.SearchHit, error)
}
