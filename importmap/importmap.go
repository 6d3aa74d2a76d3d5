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

// Package importmap builds the ES module import map handed to the
// preview document, so that imports the bundler leaves external resolve
// at run time to the same URLs the playground registered.
// See https://developer.mozilla.org/en-US/docs/Web/HTML/Element/script/type/importmap
package importmap

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// ImportMap represents an ES module import map.
type ImportMap struct {
	// Imports maps module specifiers to URLs.
	Imports map[string]string `json:"imports,omitempty"`

	// Scopes maps URL prefixes to import maps that apply when the referrer
	// URL starts with the scope prefix.
	Scopes map[string]map[string]string `json:"scopes,omitempty"`
}

// New creates an import map from specifier to URL pairs.
func New(imports map[string]string) *ImportMap {
	im := &ImportMap{}
	if len(imports) > 0 {
		im.Imports = maps.Clone(imports)
	}
	return im
}

// Parse parses JSON data into an ImportMap.
func Parse(data []byte) (*ImportMap, error) {
	var im ImportMap
	if err := json.Unmarshal(data, &im); err != nil {
		return nil, err
	}
	return &im, nil
}

// Merge combines this import map with another, with the other taking precedence.
// The result is a new ImportMap; neither input is modified.
func (im *ImportMap) Merge(other *ImportMap) *ImportMap {
	if im == nil {
		if other == nil {
			return &ImportMap{}
		}
		return other.Clone()
	}
	if other == nil {
		return im.Clone()
	}

	result := im.Clone()
	if len(other.Imports) > 0 && result.Imports == nil {
		result.Imports = make(map[string]string, len(other.Imports))
	}
	maps.Copy(result.Imports, other.Imports)

	for scope, imports := range other.Scopes {
		if result.Scopes == nil {
			result.Scopes = make(map[string]map[string]string)
		}
		if result.Scopes[scope] == nil {
			result.Scopes[scope] = make(map[string]string, len(imports))
		}
		maps.Copy(result.Scopes[scope], imports)
	}
	return result
}

// Clone creates a deep copy of the import map.
func (im *ImportMap) Clone() *ImportMap {
	if im == nil {
		return nil
	}
	result := &ImportMap{Imports: maps.Clone(im.Imports)}
	if im.Scopes != nil {
		result.Scopes = make(map[string]map[string]string, len(im.Scopes))
		for scope, imports := range im.Scopes {
			result.Scopes[scope] = maps.Clone(imports)
		}
	}
	return result
}

// Resolve maps a bare specifier through the top-level imports: an exact
// key wins, otherwise the longest trailing-slash key that prefixes spec.
func (im *ImportMap) Resolve(spec string) (string, bool) {
	if im == nil {
		return "", false
	}
	return resolveIn(im.Imports, spec)
}

func resolveIn(imports map[string]string, spec string) (string, bool) {
	if target, ok := imports[spec]; ok {
		return target, true
	}
	best := ""
	for key := range imports {
		if strings.HasSuffix(key, "/") && strings.HasPrefix(spec, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return "", false
	}
	return imports[best] + strings.TrimPrefix(spec, best), true
}

// Simplify drops entries that a trailing-slash entry already maps to the
// same URL, e.g. "react/jsx-runtime" next to "react/". The result is a
// new ImportMap.
func (im *ImportMap) Simplify() *ImportMap {
	if im == nil {
		return nil
	}
	result := &ImportMap{Imports: simplify(im.Imports)}
	if im.Scopes != nil {
		result.Scopes = make(map[string]map[string]string, len(im.Scopes))
		for scope, imports := range im.Scopes {
			result.Scopes[scope] = simplify(imports)
		}
	}
	return result
}

func simplify(imports map[string]string) map[string]string {
	if imports == nil {
		return nil
	}
	prefixes := make(map[string]string)
	for key, target := range imports {
		if strings.HasSuffix(key, "/") {
			prefixes[key] = target
		}
	}

	out := make(map[string]string, len(imports))
	for key, target := range imports {
		if !strings.HasSuffix(key, "/") && coveredBy(prefixes, key, target) {
			continue
		}
		out[key] = target
	}
	return out
}

func coveredBy(prefixes map[string]string, key, target string) bool {
	for prefix, base := range prefixes {
		if strings.HasPrefix(key, prefix) && base+strings.TrimPrefix(key, prefix) == target {
			return true
		}
	}
	return false
}

// ToJSON converts the import map to an indented JSON string.
// Returns an empty string if the import map is nil or entirely empty.
func (im *ImportMap) ToJSON() string {
	if im == nil || (len(im.Imports) == 0 && len(im.Scopes) == 0) {
		return ""
	}
	bytes, err := json.MarshalIndent(im, "", "  ")
	if err != nil {
		return ""
	}
	return string(bytes)
}

// ToHTML wraps the JSON form in an importmap script element.
func (im *ImportMap) ToHTML() string {
	body := im.ToJSON()
	if body == "" {
		body = "{}"
	}
	return fmt.Sprintf("<script type=\"importmap\">\n%s\n</script>", escapeScript(body))
}

// Format renders the import map as "json" (default) or "html".
func (im *ImportMap) Format(format string) string {
	if format == "html" {
		return im.ToHTML()
	}
	return im.ToJSON()
}

// escapeScript keeps a JSON payload from closing its script element.
func escapeScript(s string) string {
	return strings.ReplaceAll(s, "</", "<\\/")
}
