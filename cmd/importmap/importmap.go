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

// Package importmap provides the importmap command for scatola.
package importmap

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/scatola/fs"
	"bennypowers.dev/scatola/importmap"
	"bennypowers.dev/scatola/internal/config"
	"bennypowers.dev/scatola/internal/output"
	"bennypowers.dev/scatola/playground"
)

// Cmd is the importmap command that prints the import map a preview uses.
var Cmd = &cobra.Command{
	Use:   "importmap",
	Short: "Print the preview import map",
	Long: `Print the import map a project's preview runs with: the default
packages, package.json dependencies served from the CDN provider and the
packages in the config file.`,
	Example: `  # JSON import map for the current directory
  scatola importmap

  # Use unpkg and emit a script tag
  scatola importmap --provider unpkg --format html

  # Merge with an existing import map (input map takes precedence)
  scatola importmap --input-map manual-imports.json`,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "json", "Output format (json, html)")
	Cmd.Flags().String("input-map", "", "Import map file to merge with generated output")
	Cmd.Flags().Bool("simplify", true, "Drop entries covered by trailing-slash keys")
}

func run(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "html" {
		return fmt.Errorf("invalid format %q: must be 'json' or 'html'", format)
	}

	v := viper.GetViper()
	osfs := fs.NewOSFileSystem()
	provider, err := config.Provider(v)
	if err != nil {
		return err
	}
	dir, err := config.ProjectDir(v)
	if err != nil {
		return err
	}
	project, err := playground.LoadProject(osfs, dir, v.GetStringSlice(config.KeyInclude))
	if err != nil {
		return err
	}

	im := importmap.New(config.Packages(v, provider, project))

	if inputMapPath, _ := cmd.Flags().GetString("input-map"); inputMapPath != "" {
		data, err := osfs.ReadFile(inputMapPath)
		if err != nil {
			return fmt.Errorf("failed to read input map: %w", err)
		}
		input, err := importmap.Parse(data)
		if err != nil {
			return fmt.Errorf("failed to parse input map: %w", err)
		}
		im = im.Merge(input)
	}

	if simplify, _ := cmd.Flags().GetBool("simplify"); simplify {
		im = im.Simplify()
	}
	return output.ImportMap(osfs, im, format)
}
