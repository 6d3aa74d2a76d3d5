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
	"slices"
	"testing"

	"bennypowers.dev/scatola/vfs"
)

const reactTypes = "https://esm.sh/v135/@types/react@18.3.3/index.d.ts"

func seededStore() *Store {
	s := NewStore()
	s.Flush("https://esm.sh/react", reactTypes, map[string]string{
		reactTypes: `/// <reference path="global.d.ts" />
export declare const version: string;
`,
		"https://esm.sh/v135/@types/react@18.3.3/global.d.ts":      "declare var __DEV__: boolean;\n",
		"https://esm.sh/v135/@types/react@18.3.3/jsx-runtime.d.ts": "export {};\n",
	})
	return s
}

func TestRemotePatternUsesRecordedURL(t *testing.T) {
	h := New(nil, seededStore(), "esm.sh")

	got := h.ResolveModuleNames([]string{"https://esm.sh/react"}, "file:///main.tsx", nil)
	if len(got) != 1 || got[0] == nil {
		t.Fatalf("Expected resolution, got %v", got)
	}
	want := ResolvedModule{ResolvedFileName: StorePath(reactTypes), Extension: ExtensionDTS, IsExternalLibraryImport: true}
	if *got[0] != want {
		t.Errorf("got %+v, want %+v", *got[0], want)
	}
}

func TestRemotePatternPrefixLookup(t *testing.T) {
	h := New(nil, seededStore(), "esm.sh")

	got := h.ResolveModuleNames([]string{"https://esm.sh/v135/@types/react@18.3.3/g"}, "file:///main.tsx", nil)
	if got[0] == nil || got[0].ResolvedFileName != StorePath("https://esm.sh/v135/@types/react@18.3.3/global.d.ts") {
		t.Errorf("Expected first prefixed path, got %+v", got[0])
	}
}

func TestRemotePatternTakesPrecedence(t *testing.T) {
	// The standard resolver would find this file in the project itself.
	base := vfs.NewGraph(vfs.SourceFile{Name: "react.d.ts", URI: "https://esm.sh/react.d.ts", Content: "export {};"})
	h := New(base, seededStore(), "esm.sh")

	standard := StandardResolver{}.ResolveModuleName("https://esm.sh/react", "file:///main.tsx", nil, h)
	if standard.Module == nil {
		t.Fatal("test setup: standard resolver should resolve the name")
	}

	got := h.ResolveModuleNames([]string{"https://esm.sh/react"}, "file:///main.tsx", nil)
	if got[0] == nil || got[0].ResolvedFileName != StorePath(reactTypes) {
		t.Errorf("Expected remote-pattern result, got %+v", got[0])
	}
}

func TestRemotePatternMissFallsThrough(t *testing.T) {
	h := New(nil, NewStore(), "esm.sh")
	got := h.ResolveModuleNames([]string{"https://esm.sh/preact"}, "file:///main.tsx", nil)
	if got[0] != nil {
		t.Errorf("Expected nil for an unknown remote package, got %+v", got[0])
	}
}

func TestRemotePatternSkipsUnstoredEntry(t *testing.T) {
	store := NewStore()
	store.Flush("https://esm.sh/preact", "https://esm.sh/v135/preact@10/index.d.ts", map[string]string{
		"https://esm.sh/preact/hooks.d.ts": "export {};\n",
	})
	h := New(nil, store, "esm.sh")

	got := h.ResolveModuleNames([]string{"https://esm.sh/preact"}, "file:///main.tsx", nil)
	if got[0] == nil || got[0].ResolvedFileName != StorePath("https://esm.sh/preact/hooks.d.ts") {
		t.Errorf("Expected prefix lookup when the recorded entry isn't stored, got %+v", got[0])
	}
}

func TestSchemeRepairFallback(t *testing.T) {
	h := New(nil, seededStore(), "esm.sh")
	containing := StorePath(reactTypes)

	res := StandardResolver{}.ResolveModuleName("./global", containing, nil, h)
	if res.Module != nil {
		t.Fatalf("test setup: standard resolver should fail, got %+v", res.Module)
	}
	if len(res.FailedLookupLocations) == 0 {
		t.Fatal("test setup: expected failed lookup locations")
	}
	if want := "inmemory://model/node_modules/https:/esm.sh/v135/@types/react@18.3.3/global.d.ts"; !slices.Contains(res.FailedLookupLocations, want) {
		t.Errorf("Expected collapsed location %q in %v", want, res.FailedLookupLocations)
	}

	got := h.ResolveModuleNames([]string{"./global", "./jsx-runtime", "./missing"}, containing, nil)
	if got[0] == nil || got[0].ResolvedFileName != StorePath("https://esm.sh/v135/@types/react@18.3.3/global.d.ts") {
		t.Errorf("./global: got %+v", got[0])
	}
	if got[0] != nil && (!got[0].IsExternalLibraryImport || got[0].Extension != ExtensionDTS) {
		t.Errorf("repaired result should be an external declaration: %+v", got[0])
	}
	if got[1] == nil {
		t.Error("./jsx-runtime: expected resolution")
	}
	if got[2] != nil {
		t.Errorf("./missing: expected nil, got %+v", got[2])
	}
}

func TestStandardResolutionOfProjectFiles(t *testing.T) {
	base := vfs.NewGraph(vfs.DefaultFiles()...)
	h := New(base, NewStore(), "esm.sh")

	got := h.ResolveModuleNames([]string{"./app", "./app.tsx", "./nope"}, "file:///main.tsx", nil)
	for i, want := range []string{"file:///app.tsx", "file:///app.tsx"} {
		if got[i] == nil || got[i].ResolvedFileName != want {
			t.Errorf("name %d: got %+v, want %s", i, got[i], want)
			continue
		}
		if got[i].Extension != ExtensionTSX || got[i].IsExternalLibraryImport {
			t.Errorf("name %d: project file should be a local .tsx: %+v", i, got[i])
		}
	}
	if got[2] != nil {
		t.Errorf("./nope: expected nil, got %+v", got[2])
	}
}

func TestNodeModulesResolution(t *testing.T) {
	store := NewStore()
	store.Flush("", "", map[string]string{
		"lit/package.json":       `{"name": "lit", "types": "./index.d.ts"}`,
		"lit/index.d.ts":         "export {};",
		"@types/node/index.d.ts": "export {};",
	})
	h := New(nil, store, "esm.sh")

	got := h.ResolveModuleNames([]string{"lit", "node", "absent"}, "inmemory://model/src/app.ts", nil)
	if got[0] == nil || got[0].ResolvedFileName != "inmemory://model/node_modules/lit/index.d.ts" || !got[0].IsExternalLibraryImport {
		t.Errorf("lit: got %+v", got[0])
	}
	if got[1] == nil || got[1].ResolvedFileName != "inmemory://model/node_modules/@types/node/index.d.ts" {
		t.Errorf("node: got %+v", got[1])
	}
	if got[2] != nil {
		t.Errorf("absent: got %+v", got[2])
	}
}

func TestFileCapabilitiesFallBackToStore(t *testing.T) {
	base := vfs.NewGraph(vfs.DefaultFiles()...)
	store := seededStore()
	h := New(base, store, "esm.sh")

	if !h.FileExists("file:///main.tsx") {
		t.Error("base file should exist")
	}
	if !h.FileExists(StorePath(reactTypes)) {
		t.Error("stored file should exist")
	}
	if h.FileExists("file:///nope.ts") {
		t.Error("unknown file should not exist")
	}

	if text, ok := h.ReadFile("file:///styles.css"); !ok || text == "" {
		t.Error("ReadFile should return base content")
	}
	if text, ok := h.ScriptText(StorePath("https://esm.sh/v135/@types/react@18.3.3/global.d.ts")); !ok || text != "declare var __DEV__: boolean;\n" {
		t.Errorf("ScriptText from store = %q, %v", text, ok)
	}

	names := h.ScriptFileNames()
	if len(names) != 3+store.Len() {
		t.Errorf("ScriptFileNames() has %d entries, want %d", len(names), 3+store.Len())
	}
	if names[0] != "file:///main.tsx" {
		t.Errorf("base files should come first, got %v", names)
	}
}

func TestResultsPreserveOrder(t *testing.T) {
	h := New(vfs.NewGraph(vfs.DefaultFiles()...), seededStore(), "esm.sh")
	names := []string{"./missing", "https://esm.sh/react", "./app"}
	got := h.ResolveModuleNames(names, "file:///main.tsx", nil)
	if len(got) != len(names) {
		t.Fatalf("Expected %d results, got %d", len(names), len(got))
	}
	if got[0] != nil || got[1] == nil || got[2] == nil {
		t.Errorf("unexpected results %v", got)
	}
}
