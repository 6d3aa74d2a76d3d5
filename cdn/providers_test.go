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

package cdn

import (
	"testing"
)

func TestProviderByName(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantNil  bool
	}{
		{"esm.sh", "esm.sh", false},
		{"esmsh", "esm.sh", false},
		{"esm", "esm.sh", false},
		{"unpkg", "unpkg", false},
		{"jsdelivr", "jsdelivr", false},
		{"jsdelivr.net", "jsdelivr", false},
		{"cdn.jsdelivr.net", "jsdelivr", false},
		{"unknown", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProviderByName(tt.name)
			if tt.wantNil {
				if got != nil {
					t.Errorf("ProviderByName(%q) = %v, want nil", tt.name, got)
				}
				return
			}
			if got == nil {
				t.Errorf("ProviderByName(%q) = nil, want %q", tt.name, tt.wantName)
				return
			}
			if got.Name != tt.wantName {
				t.Errorf("ProviderByName(%q).Name = %q, want %q", tt.name, got.Name, tt.wantName)
			}
		})
	}
}

func TestProviderNames(t *testing.T) {
	names := ProviderNames()
	if len(names) != 3 {
		t.Errorf("Expected 3 provider names, got %d", len(names))
	}
}

func TestProviderPackageURL(t *testing.T) {
	tests := []struct {
		provider Provider
		spec     string
		want     string
	}{
		{EsmSh, "react", "https://esm.sh/react"},
		{EsmSh, "react-dom/client", "https://esm.sh/react-dom/client"},
		{EsmSh, "/preact@10", "https://esm.sh/preact@10"},
		{Unpkg, "@preact/signals", "https://unpkg.com/@preact/signals?module"},
		{Jsdelivr, "lodash-es@4.17.21", "https://cdn.jsdelivr.net/npm/lodash-es@4.17.21/+esm"},
	}

	for _, tt := range tests {
		t.Run(tt.provider.Name+"/"+tt.spec, func(t *testing.T) {
			if got := tt.provider.PackageURL(tt.spec); got != tt.want {
				t.Errorf("PackageURL(%q) = %q, want %q", tt.spec, got, tt.want)
			}
		})
	}
}

func TestProviderHost(t *testing.T) {
	tests := map[string]Provider{
		"esm.sh":           EsmSh,
		"unpkg.com":        Unpkg,
		"cdn.jsdelivr.net": Jsdelivr,
	}
	for want, p := range tests {
		if got := p.Host(); got != want {
			t.Errorf("%s.Host() = %q, want %q", p.Name, got, want)
		}
	}
}

func TestProviderHeader(t *testing.T) {
	if got := EsmSh.Header(); got != "X-TypeScript-Types" {
		t.Errorf("EsmSh.Header() = %q", got)
	}
	custom := Provider{Name: "custom", PackageURLTemplate: "https://cdn.example/{package}"}
	if got := custom.Header(); got != DefaultTypesHeader {
		t.Errorf("empty TypesHeader should default, got %q", got)
	}
}
