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

// Package output writes command results to stdout or to the --output file.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"bennypowers.dev/scatola/fs"
	"bennypowers.dev/scatola/importmap"
)

// Stdout is where results go without --output.
var Stdout io.Writer = os.Stdout

// Write writes content to the file named by viper's "output" key, or
// prints it to Stdout.
func Write(osfs fs.FileSystem, content string) error {
	if outputPath := viper.GetString("output"); outputPath != "" {
		return osfs.WriteFile(outputPath, []byte(content+"\n"), 0644)
	}
	_, err := fmt.Fprintln(Stdout, content)
	return err
}

// ImportMap formats and outputs an import map.
func ImportMap(osfs fs.FileSystem, im *importmap.ImportMap, format string) error {
	return Write(osfs, im.Format(format))
}

// JSON outputs v as indented JSON.
func JSON(osfs fs.FileSystem, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return Write(osfs, string(data))
}
