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

// Package specifier classifies module specifiers once, at parse time,
// so that resolvers and bundler hooks can dispatch on a tag instead of
// repeating string tests.
package specifier

import (
	"net/url"
	"path"
	"strings"
)

// Kind is the shape of a module specifier.
type Kind int

const (
	// Bare is a package specifier such as "react" or "@scope/pkg/sub".
	Bare Kind = iota
	// Relative starts with "./", "../" or "/".
	Relative
	// AbsoluteURL carries a scheme, e.g. "https://esm.sh/react".
	AbsoluteURL
)

func (k Kind) String() string {
	switch k {
	case Bare:
		return "bare"
	case Relative:
		return "relative"
	case AbsoluteURL:
		return "absoluteUrl"
	default:
		return "unknown"
	}
}

// Specifier is a parsed module specifier.
type Specifier struct {
	Kind  Kind
	Value string
}

// Parse classifies a raw specifier.
func Parse(raw string) Specifier {
	switch {
	case strings.HasPrefix(raw, "./"), strings.HasPrefix(raw, "../"),
		strings.HasPrefix(raw, "/"), raw == ".", raw == "..":
		return Specifier{Kind: Relative, Value: raw}
	case hasScheme(raw):
		return Specifier{Kind: AbsoluteURL, Value: raw}
	default:
		return Specifier{Kind: Bare, Value: raw}
	}
}

// hasScheme reports whether s starts with a URL scheme followed by ':'.
// Only letters, digits, '+', '-' and '.' may precede the colon, and the
// scheme must be at least two characters so Windows drive letters don't match.
func hasScheme(s string) bool {
	i := strings.Index(s, ":")
	if i < 2 {
		return false
	}
	for j, c := range s[:i] {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func (s Specifier) String() string {
	return s.Value
}

// IsHTTP reports whether the specifier is an http(s) URL.
func (s Specifier) IsHTTP() bool {
	return s.Kind == AbsoluteURL &&
		(strings.HasPrefix(s.Value, "https://") || strings.HasPrefix(s.Value, "http://"))
}

// Host returns the URL host of an absolute specifier, or "".
func (s Specifier) Host() string {
	if s.Kind != AbsoluteURL {
		return ""
	}
	u, err := url.Parse(s.Value)
	if err != nil {
		return ""
	}
	return u.Host
}

// OnHost reports whether the specifier names a module served by host.
// Absolute URLs match on their host; bare specifiers match when their
// first path segment is the host, as in "esm.sh/react".
func (s Specifier) OnHost(host string) bool {
	switch s.Kind {
	case AbsoluteURL:
		return s.Host() == host
	case Bare:
		return s.Value == host || strings.HasPrefix(s.Value, host+"/")
	default:
		return false
	}
}

// ResolveAgainst resolves a relative specifier against base, returning
// an absolute URL. Absolute URLs are returned unchanged. Bare specifiers
// cannot be resolved and return ok == false.
func (s Specifier) ResolveAgainst(base string) (string, bool) {
	switch s.Kind {
	case AbsoluteURL:
		return s.Value, true
	case Relative:
		b, err := url.Parse(base)
		if err != nil {
			return "", false
		}
		ref, err := url.Parse(s.Value)
		if err != nil {
			return "", false
		}
		return b.ResolveReference(ref).String(), true
	default:
		return "", false
	}
}

// PackageName extracts the package name from a bare specifier.
// e.g. "lit/decorators.js" -> "lit", "@scope/pkg/x" -> "@scope/pkg".
func PackageName(spec string) string {
	if strings.HasPrefix(spec, "@") {
		parts := strings.SplitN(spec, "/", 3)
		if len(parts) >= 2 {
			return path.Join(parts[0], parts[1])
		}
		return spec
	}
	parts := strings.SplitN(spec, "/", 2)
	return parts[0]
}

// StripVersion removes an "@version" from the package part of a bare
// specifier, keeping the scope marker and any subpath:
// "react@18" -> "react", "react-dom@18/client" -> "react-dom/client",
// "@types/react@18.2.0" -> "@types/react".
func StripVersion(spec string) string {
	pkg := PackageName(spec)
	subpath := strings.TrimPrefix(spec, pkg)
	start := 0
	if strings.HasPrefix(pkg, "@") {
		start = 1
	}
	if i := strings.Index(pkg[start:], "@"); i >= 0 {
		pkg = pkg[:start+i]
	}
	return pkg + subpath
}
