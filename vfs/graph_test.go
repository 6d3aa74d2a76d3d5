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

package vfs

import (
	"errors"
	"slices"
	"testing"
)

func TestGraphUpdate(t *testing.T) {
	g := NewGraph(DefaultFiles()...)

	if err := g.Update("file:///app.tsx", "export const App = () => null;"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	f, ok := g.Get("file:///app.tsx")
	if !ok || f.Content != "export const App = () => null;" {
		t.Errorf("Update not applied: %+v", f)
	}
	if f.Name != "app.tsx" || f.Language != "typescript" {
		t.Errorf("Update must only touch content: %+v", f)
	}

	err := g.Update("file:///missing.tsx", "x")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestGraphAddRemove(t *testing.T) {
	g := NewGraph()
	file := NewSourceFile("./util.ts", "export const one = 1;")
	if file.Name != "util.ts" || file.URI != "file:///util.ts" || file.Language != "typescript" {
		t.Errorf("NewSourceFile = %+v", file)
	}

	if err := g.Add(file); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := g.Add(file); !errors.Is(err, ErrFileExists) {
		t.Errorf("Expected ErrFileExists, got %v", err)
	}
	if !g.FileExists("file:///util.ts") {
		t.Error("FileExists should see the added file")
	}
	if text, ok := g.ReadFile("file:///util.ts"); !ok || text != "export const one = 1;" {
		t.Errorf("ReadFile = %q, %v", text, ok)
	}

	if err := g.Remove("file:///util.ts"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if g.FileExists("file:///util.ts") {
		t.Error("file still present after Remove")
	}
	if err := g.Remove("file:///util.ts"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	g := NewGraph(DefaultFiles()...)
	snap := g.Snapshot()

	if err := g.Update("file:///main.tsx", "changed"); err != nil {
		t.Fatal(err)
	}
	f, _ := snap.Lookup("main.tsx")
	if f.Content == "changed" {
		t.Error("snapshot observed a later edit")
	}
}

func TestSnapshotLookup(t *testing.T) {
	snap := Snapshot{NewSourceFile("app.tsx", "a"), NewSourceFile("styles.css", "b")}

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"app.tsx", "a", true},
		{"./app.tsx", "a", true},
		{"./styles.css", "b", true},
		{"./app", "", false},
		{"../app.tsx", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := snap.Lookup(tt.name)
			if ok != tt.wantOK || f.Content != tt.want {
				t.Errorf("Lookup(%q) = %+v, %v", tt.name, f, ok)
			}
		})
	}
}

func TestListFilesOrder(t *testing.T) {
	g := NewGraph(DefaultFiles()...)
	want := []string{"file:///main.tsx", "file:///styles.css", "file:///app.tsx"}
	if got := g.ListFiles(); !slices.Equal(got, want) {
		t.Errorf("ListFiles() = %v, want %v", got, want)
	}
}

func TestLanguageFor(t *testing.T) {
	tests := map[string]string{
		"main.tsx":   "typescript",
		"util.ts":    "typescript",
		"legacy.js":  "javascript",
		"styles.css": "css",
		"data.json":  "json",
		"README":     "plaintext",
	}
	for name, want := range tests {
		if got := LanguageFor(name); got != want {
			t.Errorf("LanguageFor(%q) = %q, want %q", name, got, want)
		}
	}
}
