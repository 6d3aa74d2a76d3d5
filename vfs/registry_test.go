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
	"slices"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry(DefaultPackages())

	if url, ok := r.Get("react"); !ok || url != "https://esm.sh/react" {
		t.Errorf("Get(react) = %q, %v", url, ok)
	}

	r.Set("es-toolkit", "https://esm.sh/es-toolkit")
	want := []string{"es-toolkit", "esbuild-wasm", "react", "react-dom", "react-dom/", "react/"}
	if got := r.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	if !r.Remove("es-toolkit") {
		t.Error("Remove should report a registered name")
	}
	if r.Remove("es-toolkit") {
		t.Error("Remove should report a missing name")
	}

	snap := r.Snapshot()
	snap["react"] = "mutated"
	if url, _ := r.Get("react"); url != "https://esm.sh/react" {
		t.Error("Snapshot must be a copy")
	}
}

func TestRegistryImportMap(t *testing.T) {
	r := NewRegistry(DefaultPackages())
	im := r.ImportMap()

	if got, ok := im.Resolve("react/jsx-runtime"); !ok || got != "https://esm.sh/react/jsx-runtime" {
		t.Errorf("Resolve(react/jsx-runtime) = %q, %v", got, ok)
	}
	if len(im.Imports) != len(DefaultPackages()) {
		t.Errorf("import map has %d entries, want %d", len(im.Imports), len(DefaultPackages()))
	}
}

func TestDefaultPackagesAreFresh(t *testing.T) {
	a := DefaultPackages()
	a["react"] = "changed"
	if DefaultPackages()["react"] != "https://esm.sh/react" {
		t.Error("DefaultPackages must return a new map each call")
	}
}
