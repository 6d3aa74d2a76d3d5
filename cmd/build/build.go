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

// Package build provides the build command for scatola.
package build

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/scatola/fs"
	"bennypowers.dev/scatola/internal/config"
	"bennypowers.dev/scatola/internal/output"
	"bennypowers.dev/scatola/playground"
)

// Cmd is the build command that bundles a project into its preview module.
var Cmd = &cobra.Command{
	Use:   "build",
	Short: "Bundle a project into a preview module",
	Long: `Bundle a project directory into one ES module.

Relative imports are inlined from the project's files. URL imports and the
JSX runtime stay external, as do bare imports the import map resolves.`,
	Example: `  # Print the bundled module
  scatola build --project ./demo

  # Write a complete preview page with import map
  scatola build --format html -o preview.html

  # Only the stylesheets the module imports
  scatola build --format css`,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "js", "Output format (js, css, html)")
}

func run(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("error reading format flag: %w", err)
	}
	if format != "js" && format != "css" && format != "html" {
		return fmt.Errorf("invalid format %q: must be 'js', 'css' or 'html'", format)
	}

	v := viper.GetViper()
	osfs := fs.NewOSFileSystem()
	dir, err := config.ProjectDir(v)
	if err != nil {
		return err
	}
	project, err := playground.LoadProject(osfs, dir, v.GetStringSlice(config.KeyInclude))
	if err != nil {
		return err
	}
	if len(project.Files) == 0 {
		return fmt.Errorf("no source files in %s", dir)
	}

	logger := config.Logger(v)
	session, err := config.Session(v, project, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration(config.KeyTimeout))
	defer cancel()

	result, err := session.BuildPreview(ctx)
	if err != nil {
		if format == "html" {
			_ = output.Write(osfs, session.Surface().String())
		}
		return err
	}
	for _, w := range result.Warnings {
		logger.Warning("%s", w)
	}

	switch format {
	case "css":
		return output.Write(osfs, result.CSS)
	case "html":
		return output.Write(osfs, session.Surface().String())
	default:
		return output.Write(osfs, result.JS)
	}
}
