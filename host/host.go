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

// Package host is the resolution host a type checker consults to turn
// module names into files. It layers the session's remote declaration
// store over a base file host and a standard resolution algorithm.
package host

import (
	"slices"
	"strings"

	"bennypowers.dev/scatola/internal/logging"
	"bennypowers.dev/scatola/specifier"
)

// ResolvedModule is the file a module name resolved to. A nil
// *ResolvedModule means the name is unresolved, which is not an error.
type ResolvedModule struct {
	ResolvedFileName        string `json:"resolvedFileName"`
	Extension               string `json:"extension"`
	IsExternalLibraryImport bool   `json:"isExternalLibraryImport"`
}

// Base is the underlying file host, typically the project's own files.
type Base interface {
	FileExists(path string) bool
	ReadFile(path string) (string, bool)
	ListFiles() []string
}

// ResolutionHost decorates a Base with the declaration Store.
type ResolutionHost struct {
	base       Base
	store      *Store
	resolver   Resolver
	remoteHost string
	logger     logging.Logger
}

// New creates a host over base and store, resolving remote-registry
// names for packages served by remoteHost (e.g. "esm.sh"). A nil base
// means the store is the only source of files.
func New(base Base, store *Store, remoteHost string) *ResolutionHost {
	return &ResolutionHost{
		base:       base,
		store:      store,
		resolver:   StandardResolver{},
		remoteHost: remoteHost,
	}
}

// WithResolver returns a new host delegating standard resolution to r.
func (h *ResolutionHost) WithResolver(r Resolver) *ResolutionHost {
	c := *h
	c.resolver = r
	return &c
}

// WithLogger returns a new host with the specified logger.
func (h *ResolutionHost) WithLogger(logger logging.Logger) *ResolutionHost {
	c := *h
	c.logger = logger
	return &c
}

// Store returns the durable declaration store.
func (h *ResolutionHost) Store() *Store {
	return h.store
}

// ResolveModuleNames resolves each name as imported from containingFile
// and returns one result per name, in order. For each name:
//
//  1. A name on the remote host resolves to the declaration entry
//     recorded for it, or the first stored path prefixed by it.
//  2. Otherwise the standard resolver runs with this host as its file
//     system.
//  3. If that fails, each failed lookup location is repaired
//     ("https:/" to "https://") and checked against the store.
//  4. Otherwise the result is nil.
func (h *ResolutionHost) ResolveModuleNames(names []string, containingFile string, opts *Options) []*ResolvedModule {
	results := make([]*ResolvedModule, len(names))
	for i, name := range names {
		results[i] = h.resolve(name, containingFile, opts)
		if h.logger != nil {
			if results[i] == nil {
				h.logger.Debug("Unresolved %q from %s", name, containingFile)
			} else {
				h.logger.Debug("Resolved %q from %s to %s", name, containingFile, results[i].ResolvedFileName)
			}
		}
	}
	return results
}

func (h *ResolutionHost) resolve(name, containingFile string, opts *Options) *ResolvedModule {
	spec := specifier.Parse(name)
	if h.remoteHost != "" && spec.OnHost(h.remoteHost) {
		if m := h.resolveRemote(name); m != nil {
			return m
		}
	}

	res := h.resolver.ResolveModuleName(name, containingFile, opts, h)
	if res.Module != nil {
		return res.Module
	}

	var found *ResolvedModule
	for _, location := range res.FailedLookupLocations {
		repaired := repairScheme(location)
		if h.store.Has(repaired) {
			found = externalDeclaration(repaired)
		}
	}
	return found
}

// resolveRemote looks a remote-registry name up in the store.
func (h *ResolutionHost) resolveRemote(name string) *ResolvedModule {
	if typesURL, ok := h.store.TypesURL(name); ok && h.store.HasURL(typesURL) {
		return externalDeclaration(StorePath(typesURL))
	}
	if p, ok := h.store.FirstWithPrefix(StorePath(name)); ok {
		return externalDeclaration(p)
	}
	return nil
}

func externalDeclaration(fileName string) *ResolvedModule {
	return &ResolvedModule{
		ResolvedFileName:        fileName,
		Extension:               ExtensionDTS,
		IsExternalLibraryImport: true,
	}
}

// repairScheme restores the "https://" that path cleaning collapsed to
// "https:/" inside a store path.
func repairScheme(location string) string {
	i := strings.Index(location, "https:/")
	if i < 0 || strings.HasPrefix(location[i:], "https://") {
		return location
	}
	return location[:i] + "https://" + location[i+len("https:/"):]
}

// FileExists asks the base host, then the store.
func (h *ResolutionHost) FileExists(path string) bool {
	if h.base != nil && h.base.FileExists(path) {
		return true
	}
	return h.store.Has(path)
}

// ReadFile asks the base host, then the store.
func (h *ResolutionHost) ReadFile(path string) (string, bool) {
	if h.base != nil {
		if text, ok := h.base.ReadFile(path); ok {
			return text, true
		}
	}
	return h.store.Read(path)
}

// ListFiles returns the base host's files followed by the stored paths.
func (h *ResolutionHost) ListFiles() []string {
	var files []string
	if h.base != nil {
		files = slices.Clone(h.base.ListFiles())
	}
	return append(files, h.store.Paths()...)
}

// ScriptFileNames returns every file the type checker should load.
func (h *ResolutionHost) ScriptFileNames() []string {
	return h.ListFiles()
}

// ScriptText returns the text of a script, as ReadFile does.
func (h *ResolutionHost) ScriptText(fileName string) (string, bool) {
	return h.ReadFile(fileName)
}
