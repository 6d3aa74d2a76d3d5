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

// Package bundle builds the preview module: the project's entry file
// and everything it imports from the in-memory project, in one ES
// module, with remote URL imports left for the browser to load.
package bundle

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"bennypowers.dev/scatola/importmap"
	"bennypowers.dev/scatola/internal/logging"
	"bennypowers.dev/scatola/specifier"
	"bennypowers.dev/scatola/vfs"
)

// Namespace is the esbuild namespace of in-memory project files.
const Namespace = "virtual-fs"

// Defaults for the automatic JSX runtime.
const (
	DefaultJSXImportSource = "react"
	DefaultJSXRuntimeURL   = "https://esm.sh/react/jsx-runtime"
)

// probeExtensions are appended to extensionless relative imports.
var probeExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// Output is a successful build.
type Output struct {
	// JS is the bundled module.
	JS string
	// CSS holds stylesheets imported by the module, if any.
	CSS string
	// Warnings are non-fatal esbuild diagnostics.
	Warnings []Message
}

// Bundler builds preview modules. The zero value is not usable; call New.
type Bundler struct {
	jsxImportSource string
	jsxRuntimeURL   string
	importMap       *importmap.ImportMap
	minify          bool
	logger          logging.Logger
}

// New creates a Bundler using the React automatic JSX runtime from esm.sh.
func New() *Bundler {
	return &Bundler{
		jsxImportSource: DefaultJSXImportSource,
		jsxRuntimeURL:   DefaultJSXRuntimeURL,
	}
}

// WithJSX returns a new Bundler whose JSX imports importSource+"/jsx-runtime",
// rewritten to runtimeURL.
func (b *Bundler) WithJSX(importSource, runtimeURL string) *Bundler {
	c := *b
	c.jsxImportSource = importSource
	c.jsxRuntimeURL = runtimeURL
	return &c
}

// WithImportMap returns a new Bundler that leaves bare imports external
// when im resolves them and no project file claims the name, so the
// browser's import map satisfies them at run time.
func (b *Bundler) WithImportMap(im *importmap.ImportMap) *Bundler {
	c := *b
	c.importMap = im
	return &c
}

// WithMinify returns a new Bundler that minifies its output.
func (b *Bundler) WithMinify(minify bool) *Bundler {
	c := *b
	c.minify = minify
	return &c
}

// WithLogger returns a new Bundler with the specified logger.
func (b *Bundler) WithLogger(logger logging.Logger) *Bundler {
	c := *b
	c.logger = logger
	return &c
}

// LoaderFor picks the esbuild loader from the file name's extension.
// The file's declared language plays no part.
func LoaderFor(name string) api.Loader {
	switch {
	case strings.HasSuffix(name, ".css"):
		return api.LoaderCSS
	case strings.HasSuffix(name, ".tsx"):
		return api.LoaderTSX
	case strings.HasSuffix(name, ".ts"):
		return api.LoaderTS
	default:
		return api.LoaderJS
	}
}

// Build bundles entryName from files. Build errors are returned as
// *BuildError.
func (b *Bundler) Build(ctx context.Context, entryName string, files vfs.Snapshot) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := api.Build(api.BuildOptions{
		EntryPoints:       []string{entryName},
		Bundle:            true,
		Write:             false,
		Outdir:            "/preview",
		Format:            api.FormatESModule,
		Platform:          api.PlatformBrowser,
		Charset:           api.CharsetUTF8,
		JSX:               api.JSXAutomatic,
		JSXImportSource:   b.jsxImportSource,
		MinifyWhitespace:  b.minify,
		MinifyIdentifiers: b.minify,
		MinifySyntax:      b.minify,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{b.plugin(files)},
	})

	if len(result.Errors) > 0 {
		return nil, newBuildError(result.Errors)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Output{Warnings: messages(result.Warnings)}
	for _, f := range result.OutputFiles {
		switch path.Ext(f.Path) {
		case ".js":
			out.JS += string(f.Contents)
		case ".css":
			out.CSS += string(f.Contents)
		}
	}
	if b.logger != nil {
		b.logger.Debug("Bundled %s: %d bytes JS, %d bytes CSS", entryName, len(out.JS), len(out.CSS))
	}
	return out, nil
}

// plugin routes every specifier: the JSX runtime and URLs go external,
// everything else resolves to a project file in Namespace.
func (b *Bundler) plugin(files vfs.Snapshot) api.Plugin {
	return api.Plugin{
		Name: Namespace,
		Setup: func(build api.PluginBuild) {
			runtime := "^" + regexp.QuoteMeta(b.jsxImportSource+"/jsx-runtime") + "$"
			build.OnResolve(api.OnResolveOptions{Filter: runtime},
				func(api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{Path: b.jsxRuntimeURL, External: true}, nil
				})

			build.OnResolve(api.OnResolveOptions{Filter: `^https?://`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{Path: args.Path, External: true}, nil
				})

			build.OnResolve(api.OnResolveOptions{Filter: `.*`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if f, ok := lookup(files, args.Path); ok {
						return api.OnResolveResult{Path: f.Name, Namespace: Namespace}, nil
					}
					if specifier.Parse(args.Path).Kind == specifier.Bare {
						if _, ok := b.importMap.Resolve(args.Path); ok {
							return api.OnResolveResult{Path: args.Path, External: true}, nil
						}
					}
					return api.OnResolveResult{Path: args.Path, Namespace: Namespace}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: Namespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					f, ok := lookup(files, args.Path)
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("file not found: %s", args.Path)
					}
					contents := f.Content
					return api.OnLoadResult{Contents: &contents, Loader: LoaderFor(f.Name)}, nil
				})
		},
	}
}

// lookup finds a project file by name, then "./"-stripped name. An
// extensionless name also matches with a source extension appended.
func lookup(files vfs.Snapshot, name string) (vfs.SourceFile, bool) {
	if f, ok := files.Lookup(name); ok {
		return f, true
	}
	if path.Ext(name) != "" {
		return vfs.SourceFile{}, false
	}
	for _, ext := range probeExtensions {
		if f, ok := files.Lookup(name + ext); ok {
			return f, true
		}
	}
	return vfs.SourceFile{}, false
}
