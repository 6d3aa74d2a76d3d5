//go:build js && wasm

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

// Package main provides the WASM entry point for scatola's preview
// bundler. Declaration loading needs tree-sitter's cgo parser, so only
// bundling and the preview document are exported.
package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"bennypowers.dev/scatola/bundle"
	"bennypowers.dev/scatola/importmap"
	"bennypowers.dev/scatola/internal/version"
	"bennypowers.dev/scatola/preview"
	"bennypowers.dev/scatola/render"
	"bennypowers.dev/scatola/vfs"
)

// previewer is shared by every build call, so a slow build can't
// overwrite the result of a newer one.
var previewer = preview.New(render.NewSurface(nil))

func main() {
	scatola := make(map[string]any)
	scatola["build"] = js.FuncOf(build)
	scatola["document"] = js.FuncOf(document)
	scatola["version"] = version.Info().Version

	js.Global().Set("scatola", js.ValueOf(scatola))

	// Keep the program running
	select {}
}

// build bundles a project.
// Arguments:
//   - files: string - JSON array of {name, content} objects
//   - options: object (optional)
//   - entry: string - Entry file name (default "main.tsx")
//   - packages: object - Bare specifier to URL map for the import map
//   - jsxImportSource: string - JSX import source (default "react")
//   - jsxRuntime: string - URL of the JSX runtime module
//
// Returns a Promise that resolves to {generation, js, css} or rejects
// with the build error.
func build(this js.Value, args []js.Value) any {
	handler := js.FuncOf(func(this js.Value, promiseArgs []js.Value) any {
		resolve := promiseArgs[0]
		reject := promiseArgs[1]

		go func() {
			result, err := doBuild(args)
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(js.ValueOf(map[string]any{
				"generation": int(result.Generation),
				"js":         result.JS,
				"css":        result.CSS,
			}))
		}()

		return nil
	})

	promise := js.Global().Get("Promise").New(handler)
	handler.Release()
	return promise
}

// document returns the preview page of the latest build as HTML.
func document(this js.Value, args []js.Value) any {
	return previewer.Surface().String()
}

func doBuild(args []js.Value) (*preview.Result, error) {
	if len(args) < 1 {
		return nil, &jsError{message: "build requires at least one argument (files JSON string)"}
	}

	var files []struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(args[0].String()), &files); err != nil {
		return nil, &jsError{message: "failed to parse files: " + err.Error()}
	}
	snapshot := make(vfs.Snapshot, 0, len(files))
	for _, f := range files {
		snapshot = append(snapshot, vfs.NewSourceFile(f.Name, f.Content))
	}

	opts := parseOptions(args)
	im := importmap.New(opts.packages)
	b := bundle.New().WithImportMap(im)
	if opts.jsxImportSource != "" {
		runtime := opts.jsxRuntime
		if runtime == "" {
			runtime = "https://esm.sh/" + opts.jsxImportSource + "/jsx-runtime"
		}
		b = b.WithJSX(opts.jsxImportSource, runtime)
	}

	p := previewer
	if opts.entry != "" {
		p = p.WithEntry(opts.entry)
	}
	return p.Build(context.Background(), b, snapshot, im)
}

// buildOptions holds parsed build options.
type buildOptions struct {
	entry           string
	packages        map[string]string
	jsxImportSource string
	jsxRuntime      string
}

// parseOptions extracts options from the JavaScript arguments.
func parseOptions(args []js.Value) buildOptions {
	opts := buildOptions{packages: vfs.DefaultPackages()}

	if len(args) < 2 || args[1].IsUndefined() || args[1].IsNull() {
		return opts
	}
	optionsObj := args[1]

	opts.entry = stringOption(optionsObj, "entry")
	opts.jsxImportSource = stringOption(optionsObj, "jsxImportSource")
	opts.jsxRuntime = stringOption(optionsObj, "jsxRuntime")

	if packagesVal := optionsObj.Get("packages"); !packagesVal.IsUndefined() && !packagesVal.IsNull() {
		keys := js.Global().Get("Object").Call("keys", packagesVal)
		for i := range keys.Length() {
			name := keys.Index(i).String()
			opts.packages[name] = packagesVal.Get(name).String()
		}
	}
	return opts
}

func stringOption(obj js.Value, key string) string {
	if v := obj.Get(key); !v.IsUndefined() && !v.IsNull() {
		return v.String()
	}
	return ""
}

// jsError represents an error to be returned to JavaScript.
type jsError struct {
	message string
}

func (e *jsError) Error() string {
	return e.message
}
