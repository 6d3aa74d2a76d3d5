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

package vfs

// DefaultFiles returns the starter project: an entry that mounts App,
// the App component and a stylesheet.
func DefaultFiles() []SourceFile {
	return []SourceFile{
		{
			Name:     "main.tsx",
			Language: "typescript",
			URI:      "file:///main.tsx",
			Content: `import React from 'https://esm.sh/react';
import { createRoot } from 'https://esm.sh/react-dom/client';
import { App } from './app.tsx';

const rootElement = document.getElementById("root");
if (rootElement) {
    createRoot(rootElement).render(<App/>);
}`,
		},
		{
			Name:     "styles.css",
			Language: "css",
			URI:      "file:///styles.css",
			Content: `.hello-css {
  color: green;
  margin-top: 10px;
  border: 1px solid green;
  padding: 5px;
}`,
		},
		{
			Name:     "app.tsx",
			Language: "typescript",
			URI:      "file:///app.tsx",
			Content: `export const App = () => {
  return <div className='text-blue-600'>Hello from the playground</div>}`,
		},
	}
}

// DefaultPackages returns the packages every preview can import.
func DefaultPackages() map[string]string {
	return map[string]string{
		"react":        "https://esm.sh/react",
		"react/":       "https://esm.sh/react/",
		"react-dom":    "https://esm.sh/react-dom",
		"react-dom/":   "https://esm.sh/react-dom/",
		"esbuild-wasm": "https://esm.sh/esbuild-wasm",
	}
}
