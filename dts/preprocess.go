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

// Package dts statically extracts the references of TypeScript
// declaration files: triple-slash reference directives and module
// specifiers of imports, re-exports and require calls.
//
// Nothing is evaluated; the text is parsed with tree-sitter and
// inspected with embedded queries.
package dts

import (
	"fmt"
	"regexp"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// FileReference is a file name found in a declaration, with the
// 1-indexed line it appeared on.
type FileReference struct {
	FileName string
	Line     int
}

// FileInfo is the result of preprocessing one declaration file.
type FileInfo struct {
	// ReferencedFiles holds /// <reference path="..." /> targets.
	ReferencedFiles []FileReference
	// TypeReferences holds /// <reference types="..." /> targets.
	TypeReferences []FileReference
	// LibReferences holds /// <reference lib="..." /> targets.
	LibReferences []FileReference
	// ImportedFiles holds static, re-export, require and dynamic import
	// specifiers in source order.
	ImportedFiles []FileReference
	// AmbientModules holds names of `declare module "x"` blocks.
	AmbientModules []string
}

// IsLeaf reports whether the file has neither referenced nor imported
// files. A walker stops descending at a leaf.
func (fi *FileInfo) IsLeaf() bool {
	return len(fi.ReferencedFiles) == 0 && len(fi.ImportedFiles) == 0
}

var directivePattern = regexp.MustCompile(`^///\s*<reference\s+(path|types|lib)\s*=\s*["']([^"']*)["']`)

// Preprocess parses declaration text and extracts its references.
func Preprocess(content []byte) (*FileInfo, error) {
	qm, err := GetQueryManager()
	if err != nil {
		return nil, err
	}

	parser := getTSParser()
	defer putTSParser(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse content")
	}
	defer tree.Close()

	root := tree.RootNode()
	info := &FileInfo{}
	collectDirectives(root, content, info)

	if err := collectImports(qm, root, content, info); err != nil {
		return nil, err
	}
	if err := collectAmbientModules(qm, root, content, info); err != nil {
		return nil, err
	}
	return info, nil
}

// collectDirectives reads triple-slash directives from the leading run
// of top-level comments; directives after the first statement are
// ordinary comments.
func collectDirectives(root *ts.Node, content []byte, info *FileInfo) {
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil || child.Kind() != "comment" {
			return
		}
		m := directivePattern.FindStringSubmatch(strings.TrimSpace(child.Utf8Text(content)))
		if m == nil || m[2] == "" {
			continue
		}
		ref := FileReference{
			FileName: m[2],
			Line:     int(child.StartPosition().Row) + 1,
		}
		switch m[1] {
		case "path":
			info.ReferencedFiles = append(info.ReferencedFiles, ref)
		case "types":
			info.TypeReferences = append(info.TypeReferences, ref)
		case "lib":
			info.LibReferences = append(info.LibReferences, ref)
		}
	}
}

func collectImports(qm *QueryManager, root *ts.Node, content []byte, info *FileInfo) error {
	query, err := qm.Query("imports")
	if err != nil {
		return err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, root, content)
	captureNames := query.CaptureNames()

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var spec *ts.Node
		callee := ""
		for _, capture := range match.Captures {
			switch captureNames[capture.Index] {
			case "import.spec", "importRequire.spec", "reexport.spec", "dynamicImport.spec", "require.spec":
				node := capture.Node
				spec = &node
			case "require.fn":
				callee = capture.Node.Utf8Text(content)
			}
		}
		if spec == nil {
			continue
		}
		if callee != "" && callee != "require" {
			continue
		}
		info.ImportedFiles = append(info.ImportedFiles, FileReference{
			FileName: spec.Utf8Text(content),
			Line:     int(spec.StartPosition().Row) + 1,
		})
	}
	return nil
}

func collectAmbientModules(qm *QueryManager, root *ts.Node, content []byte, info *FileInfo) error {
	query, err := qm.Query("modules")
	if err != nil {
		return err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, root, content)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, capture := range match.Captures {
			info.AmbientModules = append(info.AmbientModules, capture.Node.Utf8Text(content))
		}
	}
	return nil
}
