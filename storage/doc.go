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

// Package storage provides the persistence abstraction for ragpipe.
//
// It defines the PageCache interface that decouples callers from the
// storage implementation, so different backends (BadgerDB, in-memory,
// etc.) can be used interchangeably. Public constructors in backend
// packages return the storage interfaces rather than concrete types:
//
//	cache, err := badger.NewPageCache(path)  // returns storage.PageCache
//
// All implementations must be thread-safe and accept context.Context
// for cancellation on every operation.
package storage
