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

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"inmemory://model/node_modules/https://esm.sh/x/index.d.ts", "inmemory://model/node_modules/https:/esm.sh/x/index.d.ts"},
		{"file:///main.tsx", "file:///main.tsx"},
		{"file:///src/../app.tsx", "file:///app.tsx"},
		{"https://esm.sh/react", "https://esm.sh/react"},
		{"/a/./b/../c", "/a/c"},
		{"a//b", "a/b"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDirnameAndJoin(t *testing.T) {
	if got := dirname("file:///main.tsx"); got != "file:///" {
		t.Errorf("dirname = %q", got)
	}
	if got := joinPath("file:///", "./app"); got != "file:///app" {
		t.Errorf("joinPath = %q", got)
	}
	if got := joinPath("inmemory://model/node_modules/https:/esm.sh/v135/x", "/v135/y.d.ts"); got != "inmemory://model/v135/y.d.ts" {
		t.Errorf("root-relative joinPath = %q", got)
	}
	if _, ok := parentDir("inmemory://model/"); ok {
		t.Error("root has no parent")
	}
}

func TestRepairScheme(t *testing.T) {
	tests := map[string]string{
		"inmemory://model/node_modules/https:/esm.sh/a.d.ts":  "inmemory://model/node_modules/https://esm.sh/a.d.ts",
		"inmemory://model/node_modules/https://esm.sh/a.d.ts": "inmemory://model/node_modules/https://esm.sh/a.d.ts",
		"file:///a.ts": "file:///a.ts",
	}
	for in, want := range tests {
		if got := repairScheme(in); got != want {
			t.Errorf("repairScheme(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTypesPackage(t *testing.T) {
	if got := typesPackage("react"); got != "@types/react" {
		t.Errorf("typesPackage(react) = %q", got)
	}
	if got := typesPackage("@babel/core"); got != "@types/babel__core" {
		t.Errorf("typesPackage(@babel/core) = %q", got)
	}
}
