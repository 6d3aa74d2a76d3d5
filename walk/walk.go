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

// Package walk computes the declaration closure of a remote entry file:
// every declaration reachable through reference directives and imports,
// fetched once each into a FileTable.
package walk

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"

	"bennypowers.dev/scatola/cdn"
	"bennypowers.dev/scatola/dts"
	"bennypowers.dev/scatola/internal/logging"
	"bennypowers.dev/scatola/specifier"
)

// BareImport is an import of a package name found in a declaration.
// Bare names can't be fetched; a resolution host resolves them later.
type BareImport struct {
	Specifier string
	From      string
}

// Result describes one walk.
type Result struct {
	// Fetched lists URLs added to the table by this walk, in fetch order.
	Fetched []string
	// Bare collects package imports that were not followed.
	Bare []BareImport
	// Errors collects branch failures. A failed branch is not in the table.
	Errors []error
}

// Err joins the branch failures, or returns nil.
func (r *Result) Err() error {
	return errors.Join(r.Errors...)
}

// Walker fetches declaration closures.
type Walker struct {
	fetcher  cdn.Fetcher
	logger   logging.Logger
	parallel int
}

// New creates a Walker that fetches sequentially in depth-first order.
func New(fetcher cdn.Fetcher) *Walker {
	return &Walker{fetcher: fetcher, parallel: 1}
}

// WithLogger returns a new Walker with the specified logger.
func (w *Walker) WithLogger(logger logging.Logger) *Walker {
	return &Walker{fetcher: w.fetcher, logger: logger, parallel: w.parallel}
}

// WithParallel returns a new Walker fetching up to n files at once.
// Values below 1 mean sequential.
func (w *Walker) WithParallel(n int) *Walker {
	return &Walker{fetcher: w.fetcher, logger: w.logger, parallel: max(n, 1)}
}

// pass is the state of one Resolve call.
type pass struct {
	walker *Walker
	table  *FileTable

	mu      sync.Mutex
	claimed map[string]bool
	result  *Result
}

// Resolve adds entryURL and its closure to table. An entry that is
// already in the table returns at once. Failing to fetch the entry is an
// error; failing to fetch anything else is recorded in Result.Errors and
// only that branch is skipped.
func (w *Walker) Resolve(ctx context.Context, entryURL string, table *FileTable) (*Result, error) {
	p := &pass{
		walker:  w,
		table:   table,
		claimed: make(map[string]bool),
		result:  &Result{},
	}
	if !p.claim(entryURL) {
		return p.result, nil
	}

	text, err := w.fetcher.Fetch(ctx, entryURL)
	if err != nil {
		return nil, fmt.Errorf("fetching declarations %s: %w", entryURL, err)
	}
	next := p.visit(entryURL, text)

	if w.parallel == 1 {
		p.sequential(ctx, next)
	} else {
		p.concurrent(ctx, next)
	}

	if err := ctx.Err(); err != nil {
		return p.result, err
	}
	return p.result, nil
}

// claim marks url as taken by this pass unless it already was or the
// table already holds it. The check and the mark are one critical
// section, so two workers never fetch the same URL.
func (p *pass) claim(url string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.claimed[url] || p.table.Has(url) {
		return false
	}
	p.claimed[url] = true
	return true
}

func (p *pass) fail(url string, err error) {
	if p.walker.logger != nil {
		p.walker.logger.Warning("Skipping %s: %v", url, err)
	}
	p.mu.Lock()
	p.result.Errors = append(p.result.Errors, fmt.Errorf("fetching declarations %s: %w", url, err))
	p.mu.Unlock()
}

// visit stores fetched text and returns the URLs it leads to.
func (p *pass) visit(fileURL string, text []byte) []string {
	p.table.Add(fileURL, string(text))
	p.mu.Lock()
	p.result.Fetched = append(p.result.Fetched, fileURL)
	p.mu.Unlock()

	if p.walker.logger != nil {
		p.walker.logger.Debug("Fetched %s (%d bytes)", fileURL, len(text))
	}

	info, err := dts.Preprocess(text)
	if err != nil {
		p.mu.Lock()
		p.result.Errors = append(p.result.Errors, fmt.Errorf("preprocessing %s: %w", fileURL, err))
		p.mu.Unlock()
		return nil
	}
	if info.IsLeaf() {
		return nil
	}
	return p.edges(fileURL, info)
}

// edges resolves the outgoing references of one file. Reference paths
// are always relative to the file. Imports are followed as given when
// absolute, resolved when relative, and recorded when bare.
func (p *pass) edges(fileURL string, info *dts.FileInfo) []string {
	base, err := url.Parse(fileURL)
	if err != nil {
		return nil
	}

	var next []string
	for _, ref := range info.ReferencedFiles {
		target, err := base.Parse(ref.FileName)
		if err != nil {
			continue
		}
		next = append(next, target.String())
	}

	for _, imp := range info.ImportedFiles {
		spec := specifier.Parse(imp.FileName)
		if spec.Kind == specifier.Bare {
			p.mu.Lock()
			p.result.Bare = append(p.result.Bare, BareImport{Specifier: spec.Value, From: fileURL})
			p.mu.Unlock()
			continue
		}
		if target, ok := spec.ResolveAgainst(fileURL); ok {
			next = append(next, target)
		}
	}
	return next
}

// sequential walks depth first, in the order references appear.
func (p *pass) sequential(ctx context.Context, next []string) {
	stack := slices.Clone(next)
	slices.Reverse(stack)

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return
		}
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !p.claim(u) {
			continue
		}

		text, err := p.walker.fetcher.Fetch(ctx, u)
		if err != nil {
			p.fail(u, err)
			continue
		}
		children := p.visit(u, text)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// concurrent fans fetches out to at most parallel goroutines at a time.
func (p *pass) concurrent(ctx context.Context, next []string) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.walker.parallel)

	var spawn func(u string)
	spawn = func(u string) {
		if !p.claim(u) {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			text, err := p.walker.fetcher.Fetch(ctx, u)
			<-sem
			if err != nil {
				p.fail(u, err)
				return
			}
			for _, child := range p.visit(u, text) {
				spawn(child)
			}
		}()
	}

	for _, u := range next {
		spawn(u)
	}
	wg.Wait()
}
