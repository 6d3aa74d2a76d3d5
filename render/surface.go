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

// Package render maintains the preview document: the HTML page that
// carries the import map, the #root mount point and the bundled module.
// Applying a build swaps the module script; applying a failure replaces
// the page body with the error text.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"bennypowers.dev/scatola/bundle"
	"bennypowers.dev/scatola/importmap"
)

// Element ids managed by a Surface.
const (
	RootID   = "root"
	ScriptID = "preview-script"
	StyleID  = "preview-style"
	ErrorID  = "preview-error"
)

const blankDocument = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Preview</title>
</head>
<body>
<div id="root"></div>
</body>
</html>`

// Surface is a preview document. It is safe for concurrent use.
type Surface struct {
	mu  sync.Mutex
	doc *html.Node
}

// NewSurface creates a blank preview document with the given import map.
func NewSurface(im *importmap.ImportMap) *Surface {
	s, err := Parse(strings.NewReader(blankDocument))
	if err != nil {
		panic(fmt.Sprintf("render: parsing blank document: %v", err))
	}
	s.SetImportMap(im)
	return s
}

// Parse uses an existing HTML page as the preview document, such as a
// project's index.html. A missing #root is created on the first Apply.
func Parse(r io.Reader) (*Surface, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing preview document: %w", err)
	}
	return &Surface{doc: doc}, nil
}

// SetImportMap replaces the document's import map, or inserts one at the
// top of <head>. Import maps must precede module scripts.
func (s *Surface) SetImportMap(im *importmap.ImportMap) {
	s.mu.Lock()
	defer s.mu.Unlock()

	head := s.element(atom.Head)
	nodes, err := html.ParseFragment(strings.NewReader(im.ToHTML()), head)
	if err != nil || len(nodes) == 0 {
		return
	}
	script := nodes[0]

	if existing := find(s.doc, isImportMap); existing != nil {
		existing.Parent.InsertBefore(script, existing)
		existing.Parent.RemoveChild(existing)
		return
	}
	head.InsertBefore(script, head.FirstChild)
}

// ImportMap returns the import map currently in the document.
func (s *Surface) ImportMap() (*importmap.ImportMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := find(s.doc, isImportMap)
	if n == nil {
		return nil, errors.New("document has no import map")
	}
	return importmap.Parse([]byte(textOf(n)))
}

// Apply presents a successful build: the previous module script and
// stylesheet are removed, #root is emptied and the new module is
// appended to <head>.
func (s *Surface) Apply(out *bundle.Output) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removeByID(s.doc, ScriptID)
	removeByID(s.doc, StyleID)
	removeByID(s.doc, ErrorID)

	root := byID(s.doc, RootID)
	if root == nil {
		root = newElement(atom.Div, "id", RootID)
		s.element(atom.Body).AppendChild(root)
	}
	clearChildren(root)

	head := s.element(atom.Head)
	if out.CSS != "" {
		style := newElement(atom.Style, "id", StyleID)
		style.AppendChild(&html.Node{Type: html.TextNode, Data: escapeRawText(out.CSS, "style")})
		head.AppendChild(style)
	}
	script := newElement(atom.Script, "type", "module", "id", ScriptID)
	script.AppendChild(&html.Node{Type: html.TextNode, Data: escapeRawText(out.JS, "script")})
	head.AppendChild(script)
}

// Fail presents a failed build: the body is replaced by a red <pre>
// holding the error text. For a *bundle.BuildError each diagnostic gets
// its own line.
func (s *Surface) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removeByID(s.doc, ScriptID)
	removeByID(s.doc, StyleID)

	body := s.element(atom.Body)
	clearChildren(body)

	pre := newElement(atom.Pre, "id", ErrorID, "style", "color:red")
	pre.AppendChild(&html.Node{Type: html.TextNode, Data: failureText(err)})
	body.AppendChild(pre)
}

// Render writes the document as HTML.
func (s *Surface) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return html.Render(w, s.doc)
}

// String renders the document, or returns "" if rendering fails.
func (s *Surface) String() string {
	var buf bytes.Buffer
	if err := s.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// element returns the first element of kind a, creating <head> or <body>
// under <html> when the parsed document somehow lacks one.
func (s *Surface) element(a atom.Atom) *html.Node {
	if n := find(s.doc, func(n *html.Node) bool { return n.DataAtom == a }); n != nil {
		return n
	}
	n := newElement(a)
	if root := find(s.doc, func(n *html.Node) bool { return n.DataAtom == atom.Html }); root != nil {
		root.AppendChild(n)
	} else {
		s.doc.AppendChild(n)
	}
	return n
}

func failureText(err error) string {
	var buildErr *bundle.BuildError
	if !errors.As(err, &buildErr) || len(buildErr.Messages) < 2 {
		return err.Error()
	}
	lines := []string{fmt.Sprintf("build failed with %d errors", len(buildErr.Messages))}
	for _, m := range buildErr.Messages {
		lines = append(lines, m.String())
	}
	return strings.Join(lines, "\n")
}

// rawTextClose matches the end tags that close raw text elements. HTML
// tag names are case-insensitive, so "</SCRIPT" closes a script too.
var rawTextClose = map[string]*regexp.Regexp{
	"script": regexp.MustCompile(`(?i)</(script)`),
	"style":  regexp.MustCompile(`(?i)</(style)`),
}

// escapeRawText keeps raw text from closing its element early. Inside
// JS strings, template literals and regular expressions "<\/" means the
// same as "</". The tag's case is preserved.
func escapeRawText(text, tag string) string {
	return rawTextClose[tag].ReplaceAllString(text, `<\/${1}`)
}

func newElement(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func isImportMap(n *html.Node) bool {
	if n.DataAtom != atom.Script {
		return false
	}
	t, _ := attr(n, "type")
	return strings.EqualFold(t, "importmap")
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func byID(doc *html.Node, id string) *html.Node {
	return find(doc, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
}

func removeByID(doc *html.Node, id string) {
	if n := byID(doc, id); n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func clearChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
