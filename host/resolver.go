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
	"path"
	"strings"

	"bennypowers.dev/scatola/packagejson"
	"bennypowers.dev/scatola/specifier"
)

// Declaration and source extensions a resolved module can carry.
const (
	ExtensionDTS = ".d.ts"
	ExtensionTS  = ".ts"
	ExtensionTSX = ".tsx"
)

// FileSystem is what a resolver may ask about files.
type FileSystem interface {
	FileExists(path string) bool
	ReadFile(path string) (string, bool)
}

// Options configures standard resolution.
type Options struct {
	// Extensions are tried in order for extensionless names.
	Extensions []string
}

// DefaultOptions resolves TypeScript sources and declarations.
var DefaultOptions = Options{Extensions: []string{ExtensionTS, ExtensionTSX, ExtensionDTS}}

// Resolution is the outcome of one standard lookup. When Module is nil,
// FailedLookupLocations lists every path that was tried.
type Resolution struct {
	Module                *ResolvedModule
	FailedLookupLocations []string
}

// Resolver is a module resolution algorithm.
type Resolver interface {
	ResolveModuleName(name, containingFile string, opts *Options, fsys FileSystem) Resolution
}

// StandardResolver resolves like a node-style TypeScript resolver:
// relative names against the containing directory, package names
// through node_modules directories and their package.json types.
//
// Paths are normalized the way such resolvers treat URL-shaped file
// names: the leading scheme://authority/ is the root and the rest is
// cleaned as a path, so an embedded "https://" collapses to "https:/".
type StandardResolver struct{}

// ResolveModuleName implements Resolver.
func (StandardResolver) ResolveModuleName(name, containingFile string, opts *Options, fsys FileSystem) Resolution {
	if opts == nil || len(opts.Extensions) == 0 {
		opts = &DefaultOptions
	}
	l := &lookup{fsys: fsys, exts: opts.Extensions}

	var found string
	switch spec := specifier.Parse(name); spec.Kind {
	case specifier.Relative:
		candidate := joinPath(dirname(containingFile), name)
		found = l.file(candidate)
		if found == "" {
			found = l.directory(candidate)
		}
	case specifier.AbsoluteURL:
		candidate := normalizePath(name)
		found = l.file(candidate)
		if found == "" {
			found = l.directory(candidate)
		}
	case specifier.Bare:
		found = l.nodeModules(dirname(containingFile), name)
	}

	if found == "" {
		return Resolution{FailedLookupLocations: l.failed}
	}
	return Resolution{Module: &ResolvedModule{
		ResolvedFileName:        found,
		Extension:               extensionOf(found),
		IsExternalLibraryImport: strings.Contains(found, "/node_modules/"),
	}}
}

type lookup struct {
	fsys   FileSystem
	exts   []string
	failed []string
}

func (l *lookup) try(p string) bool {
	if l.fsys.FileExists(p) {
		return true
	}
	l.failed = append(l.failed, p)
	return false
}

// file tries p as a file: as given when it already has a TypeScript
// extension, with a JavaScript extension swapped, else with each
// configured extension appended.
func (l *lookup) file(p string) string {
	if extensionOf(p) != "" {
		if l.try(p) {
			return p
		}
		return ""
	}
	stem := p
	for _, js := range []string{".mjs", ".cjs", ".jsx", ".js"} {
		if strings.HasSuffix(p, js) {
			stem = strings.TrimSuffix(p, js)
			break
		}
	}
	for _, ext := range l.exts {
		if l.try(stem + ext) {
			return stem + ext
		}
	}
	return ""
}

// directory tries p as a package directory, then its index file.
func (l *lookup) directory(p string) string {
	if found := l.packageEntry(p, "."); found != "" {
		return found
	}
	return l.file(p + "/index")
}

// packageEntry reads dir/package.json and resolves the declaration
// entry for subpath.
func (l *lookup) packageEntry(dir, subpath string) string {
	manifest := dir + "/package.json"
	if !l.try(manifest) {
		return ""
	}
	text, ok := l.fsys.ReadFile(manifest)
	if !ok {
		return ""
	}
	pkg, err := packagejson.Parse([]byte(text))
	if err != nil {
		return ""
	}
	entry, err := pkg.TypesEntry(subpath)
	if err != nil {
		return ""
	}
	return l.file(joinPath(dir, "./"+entry))
}

// nodeModules walks from dir up to the root, looking for name in each
// node_modules directory and its @types sibling.
func (l *lookup) nodeModules(dir, name string) string {
	pkgName := specifier.PackageName(name)
	sub := strings.TrimPrefix(name, pkgName)

	for {
		if path.Base(dir) != "node_modules" {
			modules := joinPath(dir, "./node_modules")
			for _, candidate := range []string{pkgName, typesPackage(pkgName)} {
				if found := l.inPackage(joinPath(modules, "./"+candidate), sub); found != "" {
					return found
				}
			}
		}
		parent, ok := parentDir(dir)
		if !ok {
			return ""
		}
		dir = parent
	}
}

func (l *lookup) inPackage(pkgDir, sub string) string {
	if found := l.packageEntry(pkgDir, "."+sub); found != "" {
		return found
	}
	target := pkgDir + sub
	if found := l.file(target); found != "" {
		return found
	}
	return l.file(target + "/index")
}

// typesPackage maps a package name to its DefinitelyTyped name.
func typesPackage(name string) string {
	if scope, pkg, ok := strings.Cut(strings.TrimPrefix(name, "@"), "/"); ok && strings.HasPrefix(name, "@") {
		return "@types/" + scope + "__" + pkg
	}
	return "@types/" + name
}

func extensionOf(p string) string {
	for _, ext := range []string{ExtensionDTS, ".d.mts", ".d.cts", ExtensionTSX, ExtensionTS} {
		if strings.HasSuffix(p, ext) {
			if ext == ".d.mts" || ext == ".d.cts" {
				return ExtensionDTS
			}
			return ext
		}
	}
	return ""
}

// splitRoot separates a scheme://authority/ or "/" root from the rest.
func splitRoot(p string) (root, rest string) {
	if i := strings.Index(p, "://"); i > 0 && !strings.Contains(p[:i], "/") {
		after := p[i+3:]
		j := strings.Index(after, "/")
		if j < 0 {
			return p + "/", ""
		}
		return p[:i+3+j+1], after[j+1:]
	}
	if strings.HasPrefix(p, "/") {
		return "/", p[1:]
	}
	return "", p
}

func normalizePath(p string) string {
	root, rest := splitRoot(p)
	if rest == "" {
		return root
	}
	cleaned := path.Clean(rest)
	if cleaned == "." {
		return root
	}
	return root + strings.TrimPrefix(cleaned, "/")
}

func dirname(p string) string {
	root, rest := splitRoot(normalizePath(p))
	d := path.Dir(rest)
	if d == "." || d == "/" {
		return root
	}
	return root + d
}

func parentDir(dir string) (string, bool) {
	_, rest := splitRoot(dir)
	if rest == "" {
		return "", false
	}
	return dirname(dir), true
}

func joinPath(dir, name string) string {
	if strings.HasPrefix(name, "/") {
		root, _ := splitRoot(dir)
		return normalizePath(root + name[1:])
	}
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return normalizePath(dir + name)
}
