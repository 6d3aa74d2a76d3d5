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

package render

import (
	"errors"
	"strings"
	"testing"

	"bennypowers.dev/scatola/bundle"
	"bennypowers.dev/scatola/importmap"
)

func count(s, substr string) int {
	return strings.Count(s, substr)
}

func TestNewSurface(t *testing.T) {
	s := NewSurface(importmap.New(map[string]string{"react": "https://esm.sh/react"}))
	doc := s.String()

	if !strings.Contains(doc, `<script type="importmap">`) {
		t.Errorf("Expected import map script, got:\n%s", doc)
	}
	if !strings.Contains(doc, `<div id="root"></div>`) {
		t.Errorf("Expected #root, got:\n%s", doc)
	}
	im, err := s.ImportMap()
	if err != nil {
		t.Fatalf("ImportMap failed: %v", err)
	}
	if im.Imports["react"] != "https://esm.sh/react" {
		t.Errorf("Expected react mapping, got %v", im.Imports)
	}
}

func TestSetImportMapReplaces(t *testing.T) {
	s := NewSurface(importmap.New(map[string]string{"a": "https://esm.sh/a"}))
	s.SetImportMap(importmap.New(map[string]string{"b": "https://esm.sh/b"}))

	doc := s.String()
	if n := count(doc, `type="importmap"`); n != 1 {
		t.Fatalf("Expected one import map, got %d:\n%s", n, doc)
	}
	im, err := s.ImportMap()
	if err != nil {
		t.Fatalf("ImportMap failed: %v", err)
	}
	if _, ok := im.Imports["a"]; ok {
		t.Error("Expected old mapping to be gone")
	}
	if im.Imports["b"] != "https://esm.sh/b" {
		t.Errorf("Expected new mapping, got %v", im.Imports)
	}
}

func TestApplyReplacesScript(t *testing.T) {
	s := NewSurface(nil)
	s.Apply(&bundle.Output{JS: "console.log('first');"})
	s.Apply(&bundle.Output{JS: "console.log('second');"})

	doc := s.String()
	if n := count(doc, `id="preview-script"`); n != 1 {
		t.Fatalf("Expected one preview script, got %d:\n%s", n, doc)
	}
	if strings.Contains(doc, "first") {
		t.Errorf("Expected first build to be gone:\n%s", doc)
	}
	if !strings.Contains(doc, `<script type="module" id="preview-script">console.log('second');</script>`) {
		t.Errorf("Expected second build as module script:\n%s", doc)
	}
}

func TestApplyClearsRoot(t *testing.T) {
	s, err := Parse(strings.NewReader(`<html><body><div id="root"><p>stale</p></div></body></html>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	s.Apply(&bundle.Output{JS: "1"})
	doc := s.String()
	if strings.Contains(doc, "stale") {
		t.Errorf("Expected #root to be cleared:\n%s", doc)
	}
	if !strings.Contains(doc, `<div id="root"></div>`) {
		t.Errorf("Expected empty #root:\n%s", doc)
	}
}

func TestApplyStyle(t *testing.T) {
	s := NewSurface(nil)
	s.Apply(&bundle.Output{JS: "1", CSS: ".a { color: red; }"})
	if !strings.Contains(s.String(), `<style id="preview-style">.a { color: red; }</style>`) {
		t.Errorf("Expected preview style:\n%s", s.String())
	}
	s.Apply(&bundle.Output{JS: "2"})
	if strings.Contains(s.String(), "preview-style") {
		t.Errorf("Expected stale style to be removed:\n%s", s.String())
	}
}

func TestApplyEscapesScriptClose(t *testing.T) {
	s := NewSurface(nil)
	s.Apply(&bundle.Output{JS: `const tag = "</script>";`})
	doc := s.String()
	if !strings.Contains(doc, `const tag = "<\/script>";`) {
		t.Errorf("Expected escaped close tag:\n%s", doc)
	}
}

func TestApplyEscapesCloseTagsInAnyCase(t *testing.T) {
	js := `const a = "</SCRIPT>"; const b = "</Script >";`
	css := `.x::after { content: "</STYLE>"; }`

	s := NewSurface(nil)
	s.Apply(&bundle.Output{JS: js, CSS: css})

	reparsed, err := Parse(strings.NewReader(s.String()))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	script := byID(reparsed.doc, ScriptID)
	if script == nil {
		t.Fatalf("Expected module script after a round trip:\n%s", s.String())
	}
	if got, want := textOf(script), `const a = "<\/SCRIPT>"; const b = "<\/Script >";`; got != want {
		t.Errorf("Script text = %q, want %q", got, want)
	}
	style := byID(reparsed.doc, StyleID)
	if style == nil {
		t.Fatalf("Expected style after a round trip:\n%s", s.String())
	}
	if got, want := textOf(style), `.x::after { content: "<\/STYLE>"; }`; got != want {
		t.Errorf("Style text = %q, want %q", got, want)
	}
}

func TestFail(t *testing.T) {
	s := NewSurface(nil)
	s.Apply(&bundle.Output{JS: "console.log('ok');"})
	s.Fail(errors.New("file not found: ./missing"))

	doc := s.String()
	if !strings.Contains(doc, `<pre id="preview-error" style="color:red">file not found: ./missing</pre>`) {
		t.Errorf("Expected red error block:\n%s", doc)
	}
	if strings.Contains(doc, `id="root"`) || strings.Contains(doc, "preview-script") {
		t.Errorf("Expected body and script to be cleared:\n%s", doc)
	}

	s.Apply(&bundle.Output{JS: "console.log('fixed');"})
	doc = s.String()
	if strings.Contains(doc, "preview-error") {
		t.Errorf("Expected error block to be removed:\n%s", doc)
	}
	if !strings.Contains(doc, `<div id="root"></div>`) {
		t.Errorf("Expected #root to be recreated:\n%s", doc)
	}
}

func TestFailBuildErrorLines(t *testing.T) {
	s := NewSurface(nil)
	s.Fail(&bundle.BuildError{Messages: []bundle.Message{
		{File: "main.tsx", Line: 1, Column: 6, Text: "Expected identifier"},
		{File: "app.tsx", Line: 3, Column: 0, Text: "Unexpected end of file"},
	}})
	doc := s.String()
	for _, want := range []string{
		"build failed with 2 errors",
		"main.tsx:1:6: Expected identifier",
		"app.tsx:3:0: Unexpected end of file",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Expected %q in:\n%s", want, doc)
		}
	}
}

func TestFailEscapesText(t *testing.T) {
	s := NewSurface(nil)
	s.Fail(errors.New("<b>bold</b>"))
	if !strings.Contains(s.String(), "&lt;b&gt;bold&lt;/b&gt;") {
		t.Errorf("Expected escaped error text:\n%s", s.String())
	}
}

func TestParseWithoutRoot(t *testing.T) {
	s, err := Parse(strings.NewReader(`<!DOCTYPE html><html><head><title>x</title></head><body><h1>Demo</h1></body></html>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := s.ImportMap(); err == nil {
		t.Error("Expected error for document without import map")
	}
	s.SetImportMap(importmap.New(map[string]string{"react": "https://esm.sh/react"}))
	s.Apply(&bundle.Output{JS: "1"})

	doc := s.String()
	if !strings.Contains(doc, "<h1>Demo</h1>") {
		t.Errorf("Expected existing content kept:\n%s", doc)
	}
	head := doc[strings.Index(doc, "<head>"):strings.Index(doc, "</head>")]
	if strings.Index(head, "importmap") > strings.Index(head, "preview-script") {
		t.Errorf("Expected import map before module script:\n%s", head)
	}
	if !strings.Contains(doc, `<div id="root"></div>`) {
		t.Errorf("Expected #root to be created:\n%s", doc)
	}
}
