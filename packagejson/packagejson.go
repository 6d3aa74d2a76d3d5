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

// Package packagejson reads the fields of package.json that locate a
// package's type declarations: types, typings, main and the "types"
// condition of conditional exports.
package packagejson

import (
	"encoding/json"
	"errors"
	"strings"

	"bennypowers.dev/scatola/fs"
)

// ErrNotExported is returned when a subpath is not exported by the package.
var ErrNotExported = errors.New("not exported by package.json")

// ErrNoTypes is returned when a package declares no type entry.
var ErrNoTypes = errors.New("no types in package.json")

// TypesConditions is the export condition priority used when looking up
// declarations.
var TypesConditions = []string{"types", "import", "default"}

// PackageJSON represents the subset of package.json relevant to
// declaration lookup and project loading.
type PackageJSON struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Main         string            `json:"main,omitempty"`
	Types        string            `json:"types,omitempty"`
	Typings      string            `json:"typings,omitempty"`
	Exports      any               `json:"exports,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Parse parses package.json data.
func Parse(data []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ParseFile parses a package.json file.
func ParseFile(fs fs.FileSystem, path string) (*PackageJSON, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// TypesEntry returns the declaration file for subpath ("." or
// "./sub"), relative to the package root and without a leading "./".
// Exports are consulted first; the root entry then falls back to
// types, typings and finally main with its extension swapped for .d.ts.
func (pkg *PackageJSON) TypesEntry(subpath string) (string, error) {
	if pkg.Exports != nil {
		target, err := pkg.ResolveExport(subpath, TypesConditions)
		if err == nil {
			return declarationPath(target), nil
		}
		if subpath != "." {
			return "", err
		}
	}
	if subpath != "." {
		return "", ErrNotExported
	}
	switch {
	case pkg.Types != "":
		return trimDotSlash(pkg.Types), nil
	case pkg.Typings != "":
		return trimDotSlash(pkg.Typings), nil
	case pkg.Main != "":
		return declarationPath(trimDotSlash(pkg.Main)), nil
	}
	return "", ErrNoTypes
}

// ResolveExport resolves subpath through the exports field using the
// given conditions in priority order. Wildcard subpaths ("./*") are
// expanded.
func (pkg *PackageJSON) ResolveExport(subpath string, conditions []string) (string, error) {
	switch exports := pkg.Exports.(type) {
	case string:
		if subpath == "." {
			return trimDotSlash(exports), nil
		}
		return "", ErrNotExported
	case map[string]any:
		if !hasSubpaths(exports) {
			if subpath == "." {
				return resolveConditions(exports, conditions)
			}
			return "", ErrNotExported
		}
		if value, ok := exports[subpath]; ok {
			return resolveValue(value, conditions)
		}
		return resolveWildcard(exports, subpath, conditions)
	}
	return "", ErrNotExported
}

func hasSubpaths(exports map[string]any) bool {
	for key := range exports {
		if strings.HasPrefix(key, ".") {
			return true
		}
	}
	return false
}

// resolveWildcard matches subpath against "./prefix/*" patterns, taking
// the longest matching prefix.
func resolveWildcard(exports map[string]any, subpath string, conditions []string) (string, error) {
	best, bestStar, bestLen := "", "", -1
	for pattern := range exports {
		prefix, suffix, ok := strings.Cut(pattern, "*")
		if !ok || !strings.HasPrefix(subpath, prefix) || !strings.HasSuffix(subpath, suffix) {
			continue
		}
		if len(prefix) > bestLen {
			best, bestLen = pattern, len(prefix)
			bestStar = strings.TrimSuffix(strings.TrimPrefix(subpath, prefix), suffix)
		}
	}
	if best == "" {
		return "", ErrNotExported
	}
	target, err := resolveValue(exports[best], conditions)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(target, "*", bestStar), nil
}

func resolveValue(value any, conditions []string) (string, error) {
	switch v := value.(type) {
	case string:
		return trimDotSlash(v), nil
	case map[string]any:
		return resolveConditions(v, conditions)
	case []any:
		for _, item := range v {
			if target, err := resolveValue(item, conditions); err == nil {
				return target, nil
			}
		}
	}
	return "", ErrNotExported
}

// resolveConditions tries each condition in order, recursing into nested maps.
func resolveConditions(m map[string]any, conditions []string) (string, error) {
	for _, cond := range conditions {
		value, ok := m[cond]
		if !ok {
			continue
		}
		if target, err := resolveValue(value, conditions); err == nil {
			return target, nil
		}
	}
	return "", ErrNotExported
}

// declarationPath maps a module path to its sibling declaration file.
func declarationPath(p string) string {
	for _, ext := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(p, ext) {
			return p
		}
	}
	for _, ext := range []string{".mjs", ".cjs", ".js", ".ts"} {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext) + ".d.ts"
		}
	}
	return p + ".d.ts"
}

// trimDotSlash removes a leading "./" from a path.
func trimDotSlash(path string) string {
	return strings.TrimPrefix(path, "./")
}
