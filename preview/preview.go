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

// Package preview runs preview builds and presents them on a render
// surface. Every build is stamped with a generation; only the newest
// requested build may touch the surface.
package preview

import (
	"context"
	"errors"
	"sync"
	"time"

	"bennypowers.dev/scatola/bundle"
	"bennypowers.dev/scatola/importmap"
	"bennypowers.dev/scatola/internal/logging"
	"bennypowers.dev/scatola/render"
	"bennypowers.dev/scatola/vfs"
)

// ErrSuperseded is returned by a build that finished after a newer build
// was requested. Its output is discarded.
var ErrSuperseded = errors.New("preview superseded by a newer build")

// Builder bundles an entry file out of a project snapshot.
type Builder interface {
	Build(ctx context.Context, entry string, files vfs.Snapshot) (*bundle.Output, error)
}

// Result describes a build that reached the surface.
type Result struct {
	Generation uint64           `json:"generation"`
	JS         string           `json:"js"`
	CSS        string           `json:"css,omitempty"`
	Warnings   []bundle.Message `json:"warnings,omitempty"`
	Duration   time.Duration    `json:"duration"`
}

// generations hands out build stamps and guards the surface.
type generations struct {
	mu     sync.Mutex
	latest uint64
}

func (g *generations) next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest++
	return g.latest
}

// Previewer builds entry and presents the outcome on a surface.
type Previewer struct {
	surface *render.Surface
	entry   string
	logger  logging.Logger
	gens    *generations
}

// New creates a Previewer presenting on surface, building "main.tsx".
func New(surface *render.Surface) *Previewer {
	return &Previewer{
		surface: surface,
		entry:   "main.tsx",
		gens:    &generations{},
	}
}

// WithEntry returns a new Previewer building entry. It shares the
// generation counter with p.
func (p *Previewer) WithEntry(entry string) *Previewer {
	c := *p
	c.entry = entry
	return &c
}

// WithLogger returns a new Previewer with the specified logger.
func (p *Previewer) WithLogger(logger logging.Logger) *Previewer {
	c := *p
	c.logger = logger
	return &c
}

// Surface returns the surface builds are presented on.
func (p *Previewer) Surface() *render.Surface {
	return p.surface
}

// Entry returns the entry file name.
func (p *Previewer) Entry() string {
	return p.entry
}

// Build bundles files with b and presents the outcome together with im.
// A failed build is presented as an error page and its error returned.
// If another Build started after this one, nothing is presented and
// ErrSuperseded is returned.
func (p *Previewer) Build(ctx context.Context, b Builder, files vfs.Snapshot, im *importmap.ImportMap) (*Result, error) {
	gen := p.gens.next()
	start := time.Now()

	out, err := b.Build(ctx, p.entry, files)

	p.gens.mu.Lock()
	defer p.gens.mu.Unlock()

	if gen != p.gens.latest {
		if p.logger != nil {
			p.logger.Debug("Build %d superseded by %d", gen, p.gens.latest)
		}
		return nil, ErrSuperseded
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	p.surface.SetImportMap(im)
	if err != nil {
		if p.logger != nil {
			p.logger.Warning("Build %d failed: %v", gen, err)
		}
		p.surface.Fail(err)
		return nil, err
	}

	p.surface.Apply(out)
	result := &Result{
		Generation: gen,
		JS:         out.JS,
		CSS:        out.CSS,
		Warnings:   out.Warnings,
		Duration:   time.Since(start),
	}
	if p.logger != nil {
		p.logger.Debug("Build %d presented in %s", gen, result.Duration)
	}
	return result, nil
}
