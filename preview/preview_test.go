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

package preview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bennypowers.dev/scatola/bundle"
	"bennypowers.dev/scatola/importmap"
	"bennypowers.dev/scatola/render"
	"bennypowers.dev/scatola/vfs"
)

// fakeBuilder returns a fixed output, optionally waiting on gate first.
type fakeBuilder struct {
	js      string
	err     error
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeBuilder) Build(ctx context.Context, entry string, files vfs.Snapshot) (*bundle.Output, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return &bundle.Output{JS: f.js}, nil
}

func TestBuildPresents(t *testing.T) {
	p := New(render.NewSurface(nil))
	im := importmap.New(map[string]string{"react": "https://esm.sh/react"})

	result, err := p.Build(context.Background(), &fakeBuilder{js: "console.log('one');"}, nil, im)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.Generation != 1 {
		t.Errorf("Expected generation 1, got %d", result.Generation)
	}
	doc := p.Surface().String()
	if !strings.Contains(doc, "console.log('one');") {
		t.Errorf("Expected module on surface:\n%s", doc)
	}
	if !strings.Contains(doc, "https://esm.sh/react") {
		t.Errorf("Expected import map on surface:\n%s", doc)
	}
}

func TestBuildFailurePresents(t *testing.T) {
	p := New(render.NewSurface(nil))
	buildErr := &bundle.BuildError{Messages: []bundle.Message{{Text: "file not found: ./app"}}}

	_, err := p.Build(context.Background(), &fakeBuilder{err: buildErr}, nil, nil)
	if !errors.Is(err, buildErr) {
		t.Fatalf("Expected build error, got %v", err)
	}
	if !strings.Contains(p.Surface().String(), "file not found: ./app") {
		t.Errorf("Expected failure on surface:\n%s", p.Surface().String())
	}
}

func TestBuildSuperseded(t *testing.T) {
	p := New(render.NewSurface(nil))
	slow := &fakeBuilder{js: "console.log('stale');", gate: make(chan struct{}), started: make(chan struct{})}

	type outcome struct {
		result *Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := p.Build(context.Background(), slow, nil, nil)
		done <- outcome{r, err}
	}()
	<-slow.started

	fresh, err := p.Build(context.Background(), &fakeBuilder{js: "console.log('fresh');"}, nil, nil)
	if err != nil {
		t.Fatalf("Fresh build failed: %v", err)
	}
	if fresh.Generation != 2 {
		t.Errorf("Expected generation 2, got %d", fresh.Generation)
	}

	close(slow.gate)
	got := <-done
	if !errors.Is(got.err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded, got %v", got.err)
	}

	doc := p.Surface().String()
	if strings.Contains(doc, "stale") || !strings.Contains(doc, "fresh") {
		t.Errorf("Expected only the fresh build on surface:\n%s", doc)
	}
}

func TestBuildSupersededFailure(t *testing.T) {
	p := New(render.NewSurface(nil))
	slow := &fakeBuilder{err: errors.New("old failure"), gate: make(chan struct{}), started: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := p.Build(context.Background(), slow, nil, nil)
		done <- err
	}()
	<-slow.started

	if _, err := p.Build(context.Background(), &fakeBuilder{js: "ok()"}, nil, nil); err != nil {
		t.Fatalf("Fresh build failed: %v", err)
	}
	close(slow.gate)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded, got %v", err)
	}
	if strings.Contains(p.Surface().String(), "old failure") {
		t.Error("Expected stale failure not to be presented")
	}
}

func TestBuildCancelledLeavesSurface(t *testing.T) {
	p := New(render.NewSurface(nil))
	if _, err := p.Build(context.Background(), &fakeBuilder{js: "kept()"}, nil, nil); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	_, err := p.Build(context.Background(), &fakeBuilder{err: context.Canceled}, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if !strings.Contains(p.Surface().String(), "kept()") {
		t.Error("Expected cancelled build to leave the surface alone")
	}
}

func TestWithEntrySharesGenerations(t *testing.T) {
	p := New(render.NewSurface(nil))
	q := p.WithEntry("index.tsx")
	if q.Entry() != "index.tsx" || p.Entry() != "main.tsx" {
		t.Fatalf("Unexpected entries %q, %q", p.Entry(), q.Entry())
	}
	if _, err := p.Build(context.Background(), &fakeBuilder{js: "a"}, nil, nil); err != nil {
		t.Fatal(err)
	}
	r, err := q.Build(context.Background(), &fakeBuilder{js: "b"}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Generation != 2 {
		t.Errorf("Expected shared generation counter, got %d", r.Generation)
	}
}

func TestBuildWithBundler(t *testing.T) {
	p := New(render.NewSurface(nil))
	files := vfs.Snapshot{
		vfs.NewSourceFile("main.tsx", "import { App } from './app';\nconsole.log(App);\n"),
		vfs.NewSourceFile("app.tsx", "export const App = 'inlined app';\n"),
	}
	result, err := p.Build(context.Background(), bundle.New(), files, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(result.JS, "inlined app") {
		t.Errorf("Expected inlined app in result:\n%s", result.JS)
	}
}
