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

// Package vfs holds the playground's in-memory project: the named source
// files the user edits and the registry of packages they import.
package vfs

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrFileNotFound is returned when no source file has the given URI.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileExists is returned when adding a file whose URI is taken.
	ErrFileExists = errors.New("file already exists")
)

// SourceFile is one file of the project. URI is its identity.
type SourceFile struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	URI      string `json:"uri"`
	Content  string `json:"content"`
}

// NewSourceFile builds a file from its name, deriving the URI and the
// editor language from the name.
func NewSourceFile(name, content string) SourceFile {
	name = strings.TrimPrefix(name, "./")
	return SourceFile{
		Name:     name,
		Language: LanguageFor(name),
		URI:      "file:///" + name,
		Content:  content,
	}
}

// LanguageFor returns the editor language for a file name. It is
// metadata only; the bundler picks loaders from the extension itself.
func LanguageFor(name string) string {
	switch path.Ext(name) {
	case ".ts", ".tsx", ".mts", ".cts":
		return "typescript"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".css":
		return "css"
	case ".json":
		return "json"
	case ".html":
		return "html"
	default:
		return "plaintext"
	}
}

// Snapshot is a by-value copy of the project handed to one build.
type Snapshot []SourceFile

// Lookup finds a file by name, trying the name as given and then with a
// leading "./" removed.
func (s Snapshot) Lookup(name string) (SourceFile, bool) {
	for _, candidate := range []string{name, strings.TrimPrefix(name, "./")} {
		for _, f := range s {
			if f.Name == candidate {
				return f, true
			}
		}
	}
	return SourceFile{}, false
}

// Graph is the live, mutable set of project files.
type Graph struct {
	mu    sync.RWMutex
	files []SourceFile
}

// NewGraph creates a graph holding files in order.
func NewGraph(files ...SourceFile) *Graph {
	return &Graph{files: slices.Clone(files)}
}

// Add appends a file.
func (g *Graph) Add(file SourceFile) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.indexOf(file.URI) >= 0 {
		return fmt.Errorf("%w: %s", ErrFileExists, file.URI)
	}
	g.files = append(g.files, file)
	return nil
}

// Update replaces the content of the file with uri.
func (g *Graph) Update(uri, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexOf(uri)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, uri)
	}
	g.files[i].Content = content
	return nil
}

// Remove deletes the file with uri.
func (g *Graph) Remove(uri string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexOf(uri)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, uri)
	}
	g.files = slices.Delete(g.files, i, i+1)
	return nil
}

// Get returns the file with uri.
func (g *Graph) Get(uri string) (SourceFile, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i := g.indexOf(uri); i >= 0 {
		return g.files[i], true
	}
	return SourceFile{}, false
}

// Lookup finds a file by name, as Snapshot.Lookup does.
func (g *Graph) Lookup(name string) (SourceFile, bool) {
	return g.Snapshot().Lookup(name)
}

// Snapshot copies the current files.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Snapshot(slices.Clone(g.files))
}

// FileExists reports whether a file with uri exists.
func (g *Graph) FileExists(uri string) bool {
	_, ok := g.Get(uri)
	return ok
}

// ReadFile returns the content of the file with uri.
func (g *Graph) ReadFile(uri string) (string, bool) {
	f, ok := g.Get(uri)
	return f.Content, ok
}

// ListFiles returns every file URI in order.
func (g *Graph) ListFiles() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	uris := make([]string, len(g.files))
	for i, f := range g.files {
		uris[i] = f.URI
	}
	return uris
}

// indexOf finds uri; callers hold g.mu.
func (g *Graph) indexOf(uri string) int {
	return slices.IndexFunc(g.files, func(f SourceFile) bool { return f.URI == uri })
}
