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

// Package types provides the types command for scatola.
package types

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/scatola/fs"
	"bennypowers.dev/scatola/host"
	"bennypowers.dev/scatola/internal/config"
	"bennypowers.dev/scatola/internal/output"
	"bennypowers.dev/scatola/playground"
)

// Cmd is the types command that loads remote declarations.
var Cmd = &cobra.Command{
	Use:   "types [package...]",
	Short: "Load remote type declarations for packages",
	Long: `Load the TypeScript declarations the CDN advertises for each package,
following every reference and import, and report what was stored.

Packages are bare specifiers ("es-toolkit", "react-dom@18/client") or
package URLs. With --resolve, module names are then resolved the way the
playground's type checker resolves them.`,
	Example: `  # Load declarations for two packages
  scatola types es-toolkit preact@10

  # Also load package.json dependencies and list every stored file
  scatola types --deps --list

  # Resolve names against the loaded declarations
  scatola types es-toolkit --resolve https://esm.sh/es-toolkit --resolve ./app`,
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("seed", false, "Also load the configured seed packages")
	Cmd.Flags().Bool("deps", false, "Also load package.json dependencies")
	Cmd.Flags().Bool("list", false, "List every stored declaration file")
	Cmd.Flags().StringArray("resolve", nil, "Module name to resolve (can be repeated)")
	Cmd.Flags().String("from", "", "Containing file for --resolve (default: the entry file)")
}

// PackageResult reports one package input.
type PackageResult struct {
	Input string `json:"input"`
	Added bool   `json:"added"`
	Error string `json:"error,omitempty"`
}

// Report is the command output.
type Report struct {
	Packages     []PackageResult                 `json:"packages"`
	Registry     map[string]string               `json:"registry"`
	Declarations map[string]string               `json:"declarations"`
	Files        []string                        `json:"files,omitempty"`
	Resolved     map[string]*host.ResolvedModule `json:"resolved,omitempty"`
}

func run(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	withSeeds, _ := flags.GetBool("seed")
	withDeps, _ := flags.GetBool("deps")
	list, _ := flags.GetBool("list")
	names, _ := flags.GetStringArray("resolve")
	from, _ := flags.GetString("from")

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

	logger := config.Logger(v)
	session, err := config.Session(v, project, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration(config.KeyTimeout))
	defer cancel()

	if withSeeds {
		if err := session.Seed(ctx, v.GetStringSlice(config.KeySeed)...); err != nil {
			logger.Warning("Seeding: %v", err)
		}
	}

	inputs := args
	if withDeps {
		inputs = append(inputs, project.PackageSpecs()...)
	}
	if len(inputs) == 0 && !withSeeds {
		return fmt.Errorf("no packages given")
	}

	report := Report{Packages: make([]PackageResult, 0, len(inputs))}
	failed := 0
	for _, input := range inputs {
		added, err := session.AddPackage(ctx, input)
		result := PackageResult{Input: input, Added: added}
		if err != nil {
			result.Error = err.Error()
			failed++
			logger.Error("Failed to load %s: %v", input, err)
		} else if !added {
			logger.Warning("%s: %v", input, playground.ErrNoDeclarations)
		} else {
			logger.Info("Loaded declarations for %s", input)
		}
		report.Packages = append(report.Packages, result)
	}

	report.Registry = session.ListPackages()
	report.Declarations = session.Store().Packages()
	if list {
		report.Files = session.Store().Paths()
	}
	if len(names) > 0 {
		if from == "" {
			from = "file:///" + v.GetString(config.KeyEntry)
		}
		report.Resolved = make(map[string]*host.ResolvedModule, len(names))
		for i, m := range session.ResolveModuleNames(names, from) {
			report.Resolved[names[i]] = m
		}
	}

	if err := output.JSON(osfs, report); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d packages failed", failed, len(inputs))
	}
	return nil
}
