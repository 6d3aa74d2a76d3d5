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

// Package playground is one editing session: the project files, the
// package registry behind the preview's import map, the declaration
// store a type checker resolves against and the preview surface.
package playground

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"bennypowers.dev/scatola/bundle"
	"bennypowers.dev/scatola/cdn"
	"bennypowers.dev/scatola/host"
	"bennypowers.dev/scatola/internal/logging"
	"bennypowers.dev/scatola/preview"
	"bennypowers.dev/scatola/render"
	"bennypowers.dev/scatola/specifier"
	"bennypowers.dev/scatola/vfs"
	"bennypowers.dev/scatola/walk"
)

var (
	// ErrNoDeclarations marks a package whose CDN response advertises no
	// declarations. AddPackage reports it as false with a nil error.
	ErrNoDeclarations = errors.New("no declarations advertised")
	// ErrEmptySpecifier is returned for blank package input.
	ErrEmptySpecifier = errors.New("empty package specifier")
)

// DefaultSeeds are the packages whose declarations a new session loads.
var DefaultSeeds = []string{
	"https://esm.sh/react/jsx-runtime",
	"https://esm.sh/react",
	"https://esm.sh/react-dom/client",
	"https://esm.sh/es-toolkit",
}

// Prober finds the declaration entry advertised for a package URL.
type Prober interface {
	Probe(ctx context.Context, rawURL string) (cdn.DeclarationRef, bool, error)
}

// Config configures a Session. Zero fields take defaults.
type Config struct {
	// Provider builds package URLs from bare input. Default esm.sh.
	Provider cdn.Provider
	// Prober reads declaration headers. Default cdn.NewProber().
	Prober Prober
	// Fetcher fetches declaration text. Default a retrying, caching
	// HTTP fetcher.
	Fetcher cdn.Fetcher
	// Files is the initial project. Default vfs.DefaultFiles().
	Files []vfs.SourceFile
	// Packages is the initial registry. Default vfs.DefaultPackages().
	Packages map[string]string
	// Entry is the file the preview bundles. Default "main.tsx".
	Entry string
	// JSXImportSource and JSXRuntimeURL select the JSX runtime.
	JSXImportSource string
	JSXRuntimeURL   string
	// Parallel bounds concurrent declaration fetches. Default 1.
	Parallel int
	// Minify minifies preview builds.
	Minify bool
	// Surface is the preview document. Default a blank page.
	Surface *render.Surface
	Logger  logging.Logger
}

// Session is one playground. All methods are safe for concurrent use;
// package additions run one at a time.
type Session struct {
	addMu sync.Mutex

	provider  cdn.Provider
	prober    Prober
	walker    *walk.Walker
	store     *host.Store
	host      *host.ResolutionHost
	graph     *vfs.Graph
	registry  *vfs.Registry
	bundler   *bundle.Bundler
	previewer *preview.Previewer
	logger    logging.Logger
}

// New creates a session from cfg.
func New(cfg Config) *Session {
	provider := cfg.Provider
	if provider.PackageURLTemplate == "" {
		provider = cdn.DefaultProvider
	}

	prober := cfg.Prober
	if prober == nil {
		prober = cdn.NewProber().WithProvider(provider).WithLogger(cfg.Logger)
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = cdn.NewCachingFetcher(
			cdn.NewRetryingFetcher(cdn.NewHTTPFetcher(), 3, 500*time.Millisecond),
			cdn.NewTextCache(0),
		)
	}

	files := cfg.Files
	if files == nil {
		files = vfs.DefaultFiles()
	}
	packages := cfg.Packages
	if packages == nil {
		packages = vfs.DefaultPackages()
	}

	graph := vfs.NewGraph(files...)
	registry := vfs.NewRegistry(packages)
	store := host.NewStore()

	surface := cfg.Surface
	if surface == nil {
		surface = render.NewSurface(registry.ImportMap())
	}

	bundler := bundle.New().WithLogger(cfg.Logger).WithMinify(cfg.Minify)
	if cfg.JSXImportSource != "" {
		runtimeURL := cfg.JSXRuntimeURL
		if runtimeURL == "" {
			runtimeURL = provider.PackageURL(cfg.JSXImportSource + "/jsx-runtime")
		}
		bundler = bundler.WithJSX(cfg.JSXImportSource, runtimeURL)
	}

	previewer := preview.New(surface).WithLogger(cfg.Logger)
	if cfg.Entry != "" {
		previewer = previewer.WithEntry(cfg.Entry)
	}

	return &Session{
		provider:  provider,
		prober:    prober,
		walker:    walk.New(fetcher).WithLogger(cfg.Logger).WithParallel(cfg.Parallel),
		store:     store,
		host:      host.New(graph, store, provider.Host()).WithLogger(cfg.Logger),
		graph:     graph,
		registry:  registry,
		bundler:   bundler,
		previewer: previewer,
		logger:    cfg.Logger,
	}
}

// AddPackage loads the declarations of a package and registers it in the
// import map. Input is a bare specifier such as "es-toolkit" or
// "react-dom@18/client", or a package URL.
//
// A package without advertised declarations returns false and a nil
// error. A network failure returns false and the error. In both cases
// neither the store nor the registry changes.
func (s *Session) AddPackage(ctx context.Context, input string) (bool, error) {
	s.addMu.Lock()
	defer s.addMu.Unlock()

	name, packageURL, err := s.normalize(input)
	if err != nil {
		return false, err
	}
	ok, err := s.load(ctx, packageURL)
	if err != nil || !ok {
		return false, err
	}
	s.registry.Set(name, packageURL)
	if s.logger != nil {
		s.logger.Debug("Added package %s from %s", name, packageURL)
	}
	return true, nil
}

// Seed loads declarations for each package URL. Packages the import map
// cannot already resolve are registered too. Failures are joined; the
// remaining URLs still load.
func (s *Session) Seed(ctx context.Context, urls ...string) error {
	s.addMu.Lock()
	defer s.addMu.Unlock()

	var errs []error
	for _, raw := range urls {
		name, packageURL, err := s.normalize(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ok, err := s.load(ctx, packageURL)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			continue
		}
		if _, mapped := s.registry.ImportMap().Resolve(name); !mapped {
			s.registry.Set(name, packageURL)
		}
	}
	return errors.Join(errs...)
}

// load probes packageURL, walks its declaration closure into a fresh
// table and flushes the table into the store. Nothing is stored unless
// the walk of the entry succeeds.
func (s *Session) load(ctx context.Context, packageURL string) (bool, error) {
	ref, ok, err := s.prober.Probe(ctx, packageURL)
	if err != nil {
		return false, fmt.Errorf("probing %s: %w", packageURL, err)
	}
	if !ok {
		if s.logger != nil {
			s.logger.Debug("%s: %v", packageURL, ErrNoDeclarations)
		}
		return false, nil
	}

	table := walk.NewFileTable()
	result, err := s.walker.Resolve(ctx, ref.TypesURL, table)
	if err != nil {
		return false, err
	}
	if err := result.Err(); err != nil && s.logger != nil {
		s.logger.Warning("Incomplete declarations for %s: %v", packageURL, err)
	}

	s.store.Flush(ref.PackageURL, ref.TypesURL, table.Snapshot())
	if s.logger != nil {
		s.logger.Debug("Stored %d declaration files for %s", table.Len(), packageURL)
	}
	return true, nil
}

// normalize turns package input into a registry name and package URL.
func (s *Session) normalize(input string) (name, packageURL string, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", ErrEmptySpecifier
	}
	if !specifier.Parse(input).IsHTTP() {
		return specifier.StripVersion(input), s.provider.PackageURL(input), nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", "", fmt.Errorf("invalid package URL %q: %w", input, err)
	}
	name = specifier.StripVersion(strings.Trim(u.Path, "/"))
	if name == "" {
		name = u.Host
	}
	return name, input, nil
}

// RemovePackage drops name from the registry. Stored declarations stay,
// so a checker keeps resolving imports that still name the URL.
func (s *Session) RemovePackage(name string) bool {
	return s.registry.Remove(name)
}

// ListPackages returns the registry as bare specifier to URL.
func (s *Session) ListPackages() map[string]string {
	return s.registry.Snapshot()
}

// BuildPreview bundles the current project and presents it.
func (s *Session) BuildPreview(ctx context.Context) (*preview.Result, error) {
	im := s.registry.ImportMap()
	return s.previewer.Build(ctx, s.bundler.WithImportMap(im), s.graph.Snapshot(), im)
}

// UpdateFileContent replaces the content of the file at uri.
func (s *Session) UpdateFileContent(uri, content string) error {
	return s.graph.Update(uri, content)
}

// AddFile adds a project file named name.
func (s *Session) AddFile(name, content string) error {
	return s.graph.Add(vfs.NewSourceFile(name, content))
}

// RemoveFile removes the project file at uri.
func (s *Session) RemoveFile(uri string) error {
	return s.graph.Remove(uri)
}

// Files returns a copy of the project files.
func (s *Session) Files() vfs.Snapshot {
	return s.graph.Snapshot()
}

// ResolveModuleNames resolves module names imported from containingFile
// the way the session's type checker would.
func (s *Session) ResolveModuleNames(names []string, containingFile string) []*host.ResolvedModule {
	return s.host.ResolveModuleNames(names, containingFile, nil)
}

// Host returns the session's resolution host.
func (s *Session) Host() *host.ResolutionHost {
	return s.host
}

// Store returns the session's declaration store.
func (s *Session) Store() *host.Store {
	return s.store
}

// Surface returns the preview document.
func (s *Session) Surface() *render.Surface {
	return s.previewer.Surface()
}
