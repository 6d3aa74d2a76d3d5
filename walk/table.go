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

package walk

import (
	"maps"
	"slices"
	"sync"
)

// FileTable maps absolute declaration URLs to their text. Entries are
// only ever added; a key present once keeps its first text.
type FileTable struct {
	mu    sync.RWMutex
	files map[string]string
	order []string
}

// NewFileTable creates an empty table.
func NewFileTable() *FileTable {
	return &FileTable{files: make(map[string]string)}
}

// Has reports whether url is in the table.
func (t *FileTable) Has(url string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.files[url]
	return ok
}

// Get returns the text stored for url.
func (t *FileTable) Get(url string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	text, ok := t.files[url]
	return text, ok
}

// Add inserts url if it is absent and reports whether it did.
func (t *FileTable) Add(url, text string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.files[url]; ok {
		return false
	}
	t.files[url] = text
	t.order = append(t.order, url)
	return true
}

// Len returns the number of entries.
func (t *FileTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.files)
}

// Keys returns the URLs in insertion order.
func (t *FileTable) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.order)
}

// Snapshot returns a copy of the table contents.
func (t *FileTable) Snapshot() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.files)
}
