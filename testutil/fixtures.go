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

// Package testutil loads testdata fixtures and serves them over HTTP
// the way the esm.sh CDN serves packages and declarations.
package testutil

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"bennypowers.dev/scatola/internal/mapfs"
)

// updateGolden enables updating golden files with actual output when -update flag is set.
var updateGolden = flag.Bool("update", false, "update golden files with actual output")

// fixturePath finds a path under testdata, trying the parent directories
// go test may be running from.
func fixturePath(rel string) (string, bool) {
	for _, dir := range []string{"testdata", filepath.Join("..", "testdata"), filepath.Join("..", "..", "testdata")} {
		p := filepath.Join(dir, rel)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// NewFixtureFS loads fixture files from testdata/<fixtureDir> into a
// MapFileSystem rooted at rootPath.
func NewFixtureFS(t *testing.T, fixtureDir string, rootPath string) *mapfs.MapFileSystem {
	t.Helper()

	dir, ok := fixturePath(fixtureDir)
	if !ok {
		t.Fatalf("Could not find fixtures at %s (tried all paths)", fixtureDir)
	}

	mfs := mapfs.New()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		mfs.AddFile(filepath.ToSlash(filepath.Join(rootPath, rel)), string(content), 0644)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to load fixtures from %s: %v", fixtureDir, err)
	}
	return mfs
}

// LoadFixtureFile reads a single fixture file relative to testdata/.
func LoadFixtureFile(t *testing.T, rel string) []byte {
	t.Helper()
	p, ok := fixturePath(rel)
	if !ok {
		t.Fatalf("Failed to find fixture %s (tried all paths)", rel)
	}
	content, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", rel, err)
	}
	return content
}

// LoadGoldenFile reads a golden file. With -update it returns nil so the
// caller writes actual output instead.
func LoadGoldenFile(t *testing.T, goldenPath string) []byte {
	t.Helper()
	if *updateGolden {
		return nil
	}
	return LoadFixtureFile(t, goldenPath)
}

// UpdateGoldenFile writes actual output to the golden file when -update is set.
func UpdateGoldenFile(t *testing.T, goldenPath string, actual []byte) {
	t.Helper()
	if !*updateGolden {
		return
	}
	target, ok := fixturePath(goldenPath)
	if !ok {
		target = filepath.Join("testdata", goldenPath)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		t.Fatalf("Failed to create directory for golden file %s: %v", goldenPath, err)
	}
	if err := os.WriteFile(target, actual, 0644); err != nil {
		t.Fatalf("Failed to write golden file %s: %v", goldenPath, err)
	}
	t.Logf("Updated golden file: %s", target)
}

// CDN is a fake package CDN. Package entry URLs answer with an optional
// X-TypeScript-Types header; declaration URLs answer with text. Every
// request is counted so tests can assert deduplication.
type CDN struct {
	*httptest.Server

	mu       sync.Mutex
	types    map[string]string
	files    map[string]string
	requests map[string]int
}

// NewCDN starts a fake CDN and registers its shutdown with t.
func NewCDN(t *testing.T) *CDN {
	t.Helper()
	c := &CDN{
		types:    make(map[string]string),
		files:    make(map[string]string),
		requests: make(map[string]int),
	}
	c.Server = httptest.NewServer(http.HandlerFunc(c.serve))
	t.Cleanup(c.Close)
	return c
}

// Package registers a package entry at path whose declarations live at
// typesPath. An empty typesPath serves the entry without the header.
func (c *CDN) Package(path, typesPath string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[path] = typesPath
	return c.URL + path
}

// File registers declaration text at path and returns its URL.
func (c *CDN) File(path, content string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = content
	return c.URL + path
}

// Requests returns how many times path was requested.
func (c *CDN) Requests(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[path]
}

// Fetch fetches url through the CDN's client, so the CDN can stand in
// for a declaration fetcher.
func (c *CDN) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *CDN) serve(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	c.requests[r.URL.Path]++
	typesPath, isPackage := c.types[r.URL.Path]
	content, isFile := c.files[r.URL.Path]
	c.mu.Unlock()

	switch {
	case isPackage:
		if typesPath != "" {
			if !strings.HasPrefix(typesPath, "http") {
				typesPath = c.URL + typesPath
			}
			w.Header().Set("X-TypeScript-Types", typesPath)
		}
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = w.Write([]byte("export default {};\n"))
	case isFile:
		w.Header().Set("Content-Type", "application/typescript")
		_, _ = w.Write([]byte(content))
	default:
		http.NotFound(w, r)
	}
}
