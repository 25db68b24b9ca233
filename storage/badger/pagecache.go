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

package badger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ragpipe/storage"
)

// pageCache implements storage.PageCache on top of a Backend.
type pageCache struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.PageCache = (*pageCache)(nil)

// NewPageCache opens a page cache at the given path.
// Caller must Close it when done.
func NewPageCache(path string) (storage.PageCache, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newPageCache(backend), nil
}

// NewMemoryPageCache creates an in-memory page cache for testing.
func NewMemoryPageCache() (storage.PageCache, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newPageCache(backend), nil
}

func newPageCache(backend *Backend) *pageCache {
	return &pageCache{
		backend: backend,
		logger:  slog.Default().With("component", "page-cache"),
	}
}

// Get implements storage.PageCache.
func (c *pageCache) Get(ctx context.Context, url string) (*storage.CachedPage, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if c.backend.IsClosed() {
		return nil, false, storage.ErrStorageClosed
	}

	var page *storage.CachedPage
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makePageKey(url))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			page, err = storage.UnmarshalCachedPage(val)
			return err
		})
	}, false)

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return page, true, nil
}

// Put implements storage.PageCache.
func (c *pageCache) Put(ctx context.Context, page *storage.CachedPage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if page == nil || page.URL == "" {
		return storage.ErrMissingURL
	}
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	data, err := storage.MarshalCachedPage(page)
	if err != nil {
		return err
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makePageKey(page.URL), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Delete implements storage.PageCache.
func (c *pageCache) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makePageKey(url)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Close implements storage.PageCache.
func (c *pageCache) Close() error {
	return c.backend.Close()
}
