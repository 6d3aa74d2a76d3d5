/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package cdn

import (
	"context"
	"sync"
)

// TextCache is a session-scoped LRU of fetched declaration text keyed by
// URL. Concurrent loads of one URL share a single fetch.
type TextCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string // LRU order tracking
	maxSize int
}

type cacheEntry struct {
	text []byte
	once sync.Once
	err  error
}

// NewTextCache creates a cache holding at most maxSize URLs.
// When the cache exceeds this size, the oldest entries are evicted.
func NewTextCache(maxSize int) *TextCache {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &TextCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// GetOrLoad returns cached text for url or loads it with loader. The
// loader runs at most once per URL, even with concurrent callers. A failed
// load is not kept, so a later call tries again.
func (c *TextCache) GetOrLoad(url string, loader func() ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	entry, ok := c.entries[url]
	if ok {
		c.touch(url)
	} else {
		entry = &cacheEntry{}
		c.evict()
		c.entries[url] = entry
		c.order = append(c.order, url)
	}
	c.mu.Unlock()

	// Load outside the lock
	entry.once.Do(func() {
		entry.text, entry.err = loader()
	})

	if entry.err != nil {
		c.mu.Lock()
		if c.entries[url] == entry {
			c.remove(url)
		}
		c.mu.Unlock()
		return nil, entry.err
	}
	return entry.text, nil
}

// evict drops the least recently used entry when the cache is full.
// Callers hold c.mu.
func (c *TextCache) evict() {
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// touch moves url to the most recently used position. Callers hold c.mu.
func (c *TextCache) touch(url string) {
	for i, k := range c.order {
		if k == url {
			c.order = append(append(c.order[:i:i], c.order[i+1:]...), url)
			return
		}
	}
}

// remove deletes url. Callers hold c.mu.
func (c *TextCache) remove(url string) {
	delete(c.entries, url)
	for i, k := range c.order {
		if k == url {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// CachingFetcher serves repeat fetches of a URL from a TextCache.
type CachingFetcher struct {
	fetcher Fetcher
	cache   *TextCache
}

// NewCachingFetcher wraps f with cache.
func NewCachingFetcher(f Fetcher, cache *TextCache) *CachingFetcher {
	return &CachingFetcher{fetcher: f, cache: cache}
}

// Fetch implements Fetcher.
func (c *CachingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return c.cache.GetOrLoad(url, func() ([]byte, error) {
		return c.fetcher.Fetch(ctx, url)
	})
}
