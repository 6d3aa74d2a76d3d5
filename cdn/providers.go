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
	"net/url"
	"strings"
)

// DefaultTypesHeader is the response header esm.sh uses to point at the
// declaration entry of a module.
const DefaultTypesHeader = "X-TypeScript-Types"

// Provider represents a CDN provider with URL templates for package resolution.
type Provider struct {
	Name string
	// PackageURLTemplate is the URL template for a package entry module.
	// Variables: {package}, which may carry a version and subpath.
	PackageURLTemplate string
	// TypesHeader names the response header that carries the declaration
	// entry URL. Providers that don't send one still resolve modules, but
	// packages added from them carry no types.
	TypesHeader string
}

// Predefined CDN providers
var (
	// EsmSh is the esm.sh CDN provider.
	EsmSh = Provider{
		Name:               "esm.sh",
		PackageURLTemplate: "https://esm.sh/{package}",
		TypesHeader:        DefaultTypesHeader,
	}

	// Unpkg is the unpkg CDN provider.
	Unpkg = Provider{
		Name:               "unpkg",
		PackageURLTemplate: "https://unpkg.com/{package}?module",
		TypesHeader:        DefaultTypesHeader,
	}

	// Jsdelivr is the jsDelivr CDN provider.
	Jsdelivr = Provider{
		Name:               "jsdelivr",
		PackageURLTemplate: "https://cdn.jsdelivr.net/npm/{package}/+esm",
		TypesHeader:        DefaultTypesHeader,
	}
)

// DefaultProvider is the default CDN provider (esm.sh).
var DefaultProvider = EsmSh

// ProviderByName returns a CDN provider by name.
// Returns nil if the provider name is not recognized.
func ProviderByName(name string) *Provider {
	switch name {
	case "esm.sh", "esmsh", "esm":
		return &EsmSh
	case "unpkg":
		return &Unpkg
	case "jsdelivr", "jsdelivr.net", "cdn.jsdelivr.net":
		return &Jsdelivr
	default:
		return nil
	}
}

// ProviderNames returns a list of supported CDN provider names.
func ProviderNames() []string {
	return []string{"esm.sh", "unpkg", "jsdelivr"}
}

// PackageURL expands the package URL template for spec, e.g.
// "react-dom/client" or "preact@10".
func (p Provider) PackageURL(spec string) string {
	return strings.ReplaceAll(p.PackageURLTemplate, "{package}", strings.TrimPrefix(spec, "/"))
}

// Host returns the host serving the provider's packages.
func (p Provider) Host() string {
	u, err := url.Parse(strings.ReplaceAll(p.PackageURLTemplate, "{package}", "x"))
	if err != nil {
		return ""
	}
	return u.Host
}

// Header returns the declaration header name, defaulting to
// DefaultTypesHeader.
func (p Provider) Header() string {
	if p.TypesHeader == "" {
		return DefaultTypesHeader
	}
	return p.TypesHeader
}
