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

package vfs

import (
	"maps"
	"slices"
	"sync"

	"bennypowers.dev/scatola/importmap"
)

// Registry maps bare specifiers to the remote URLs they load from. It
// seeds declaration resolution and becomes the preview's import map.
type Registry struct {
	mu       sync.RWMutex
	packages map[string]string
}

// NewRegistry creates a registry holding packages.
func NewRegistry(packages map[string]string) *Registry {
	r := &Registry{packages: make(map[string]string, len(packages))}
	maps.Copy(r.packages, packages)
	return r
}

// Set registers name at url, replacing any earlier URL.
func (r *Registry) Set(name, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[name] = url
}

// Remove drops name and reports whether it was registered.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.packages[name]
	delete(r.packages, name)
	return ok
}

// Get returns the URL registered for name.
func (r *Registry) Get(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	url, ok := r.packages[name]
	return url, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.packages))
}

// Snapshot copies the registry.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.packages)
}

// ImportMap builds the import map for the execution environment.
func (r *Registry) ImportMap() *importmap.ImportMap {
	return importmap.New(r.Snapshot())
}
