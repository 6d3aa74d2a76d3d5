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

package specifier

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		{"react", Bare},
		{"@scope/pkg/sub", Bare},
		{"esm.sh/react", Bare},
		{"./app", Relative},
		{"../lib/index.d.ts", Relative},
		{"/v135/react.d.ts", Relative},
		{"https://esm.sh/react", AbsoluteURL},
		{"http://localhost:8080/x.js", AbsoluteURL},
		{"inmemory://model/node_modules/x", AbsoluteURL},
		{"C:/foo", Bare},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Parse(tt.raw).Kind; got != tt.want {
				t.Errorf("Parse(%q).Kind = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsHTTP(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://esm.sh/react", true},
		{"http://localhost:8080/x.js", true},
		{"inmemory://model/node_modules/x", false},
		{"react@18", false},
		{"/https://esm.sh/react", false},
	}
	for _, tt := range tests {
		if got := Parse(tt.raw).IsHTTP(); got != tt.want {
			t.Errorf("Parse(%q).IsHTTP() = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestOnHost(t *testing.T) {
	tests := []struct {
		raw  string
		host string
		want bool
	}{
		{"https://esm.sh/react", "esm.sh", true},
		{"https://unpkg.com/react", "esm.sh", false},
		{"esm.sh/react", "esm.sh", true},
		{"esm.sharp", "esm.sh", false},
		{"react", "esm.sh", false},
		{"./esm.sh", "esm.sh", false},
	}
	for _, tt := range tests {
		if got := Parse(tt.raw).OnHost(tt.host); got != tt.want {
			t.Errorf("Parse(%q).OnHost(%q) = %v, want %v", tt.raw, tt.host, got, tt.want)
		}
	}
}

func TestResolveAgainst(t *testing.T) {
	base := "https://esm.sh/v135/@types/react@18.2.0/index.d.ts"
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"./global.d.ts", "https://esm.sh/v135/@types/react@18.2.0/global.d.ts", true},
		{"../csstype@3.1.2/index.d.ts", "https://esm.sh/v135/@types/csstype@3.1.2/index.d.ts", true},
		{"/v135/prop-types.d.ts", "https://esm.sh/v135/prop-types.d.ts", true},
		{"https://esm.sh/other.d.ts", "https://esm.sh/other.d.ts", true},
		{"csstype", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.raw).ResolveAgainst(base)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ResolveAgainst(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"lit":                 "lit",
		"lit/decorators.js":   "lit",
		"@scope/pkg":          "@scope/pkg",
		"@scope/pkg/sub/path": "@scope/pkg",
	}
	for in, want := range tests {
		if got := PackageName(in); got != want {
			t.Errorf("PackageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripVersion(t *testing.T) {
	tests := map[string]string{
		"react":               "react",
		"react@18":            "react",
		"react-dom@18/client": "react-dom/client",
		"@types/react@18.2.0": "@types/react",
		"@scope/pkg":          "@scope/pkg",
	}
	for in, want := range tests {
		if got := StripVersion(in); got != want {
			t.Errorf("StripVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
