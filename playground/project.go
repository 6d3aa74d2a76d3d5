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

package playground

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"bennypowers.dev/scatola/fs"
	"bennypowers.dev/scatola/packagejson"
	"bennypowers.dev/scatola/vfs"
)

// DefaultIncludes selects the source files of a project directory.
var DefaultIncludes = []string{"**/*.{ts,tsx,js,jsx,css}"}

// Project is a playground loaded from a directory.
type Project struct {
	// Files are the matched sources, sorted by name.
	Files []vfs.SourceFile
	// Dependencies come from package.json, name to version range.
	Dependencies map[string]string
	// Document is the content of index.html, if the directory has one.
	Document []byte
}

// LoadProject reads the files under dir matching includes. Paths under
// node_modules and declaration files are skipped. A package.json
// supplies Dependencies.
func LoadProject(fsys fs.FileSystem, dir string, includes []string) (*Project, error) {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	root := fsys.DirFS(dir)

	seen := make(map[string]bool)
	var names []string
	for _, pattern := range includes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
		matches, err := doublestar.Glob(root, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("globbing %s: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || skipped(m) {
				continue
			}
			seen[m] = true
			names = append(names, m)
		}
	}
	slices.Sort(names)

	project := &Project{}
	for _, name := range names {
		content, err := fsys.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		project.Files = append(project.Files, vfs.NewSourceFile(name, string(content)))
	}

	pkgPath := filepath.Join(dir, "package.json")
	if fsys.Exists(pkgPath) {
		pkg, err := packagejson.ParseFile(fsys, pkgPath)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", pkgPath, err)
		}
		project.Dependencies = pkg.Dependencies
	}

	docPath := filepath.Join(dir, "index.html")
	if fsys.Exists(docPath) {
		doc, err := fsys.ReadFile(docPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", docPath, err)
		}
		project.Document = doc
	}
	return project, nil
}

// PackageSpecs returns the dependencies as package input for
// AddPackage, e.g. "react@^18.2.0", sorted by name. Wildcard versions
// are left off.
func (p *Project) PackageSpecs() []string {
	specs := make([]string, 0, len(p.Dependencies))
	for name, version := range p.Dependencies {
		switch version {
		case "", "*", "latest":
			specs = append(specs, name)
		default:
			specs = append(specs, name+"@"+version)
		}
	}
	slices.Sort(specs)
	return specs
}

func skipped(name string) bool {
	return strings.HasPrefix(name, "node_modules/") ||
		strings.Contains(name, "/node_modules/") ||
		strings.HasSuffix(name, ".d.ts")
}
