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

package host

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// BasePath prefixes every declaration the store holds, so remote URLs
// look like files under a node_modules directory to the resolver.
const BasePath = "inmemory://model/node_modules/"

// Store is the durable declaration store of a session: file paths to
// text, plus package entry URLs to their declaration entry URLs. It lives
// for the whole session and only grows through successful passes.
type Store struct {
	mu    sync.RWMutex
	files map[string]string
	urls  map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		files: make(map[string]string),
		urls:  make(map[string]string),
	}
}

// StorePath maps a remote URL to its path in the store.
func StorePath(url string) string {
	return BasePath + url
}

// Flush adds fetched declarations keyed by remote URL, and the package
// mapping, in one critical section.
func (s *Store) Flush(packageURL, typesURL string, files map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for url, text := range files {
		s.files[StorePath(url)] = text
	}
	if packageURL != "" {
		s.urls[packageURL] = typesURL
	}
}

// Has reports whether path is stored.
func (s *Store) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[path]
	return ok
}

// Read returns the text at path.
func (s *Store) Read(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.files[path]
	return text, ok
}

// TypesURL returns the declaration entry recorded for a package URL.
func (s *Store) TypesURL(packageURL string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	url, ok := s.urls[packageURL]
	return url, ok
}

// HasURL reports whether the remote url is stored.
func (s *Store) HasURL(url string) bool {
	return s.Has(StorePath(url))
}

// Paths returns every stored path, sorted.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.files))
}

// FirstWithPrefix returns the first stored path, in sorted order, that
// starts with prefix.
func (s *Store) FirstWithPrefix(prefix string) (string, bool) {
	for _, p := range s.Paths() {
		if strings.HasPrefix(p, prefix) {
			return p, true
		}
	}
	return "", false
}

// Packages copies the package URL mapping.
func (s *Store) Packages() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.urls)
}

// Len returns the number of stored files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
