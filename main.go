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

// Command scatola resolves remote TypeScript declarations and bundles
// in-memory playground projects into live previews.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/scatola/cmd/build"
	"bennypowers.dev/scatola/cmd/importmap"
	"bennypowers.dev/scatola/cmd/serve"
	"bennypowers.dev/scatola/cmd/types"
	"bennypowers.dev/scatola/cmd/version"
	"bennypowers.dev/scatola/internal/config"
)

var (
	cpuprofile     string
	cpuprofileFile *os.File
	rootCmd        = &cobra.Command{
		Use:   "scatola",
		Short: "Type-aware playground bundler",
		Long: `scatola loads TypeScript declarations for CDN packages and bundles
playground projects into previews that import those packages by URL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(viper.GetViper()); err != nil {
				return err
			}
			if cpuprofile != "" {
				f, err := os.Create(cpuprofile)
				if err != nil {
					return fmt.Errorf("could not create CPU profile: %w", err)
				}
				cpuprofileFile = f
				if err := pprof.StartCPUProfile(f); err != nil {
					closeErr := f.Close()
					return errors.Join(
						fmt.Errorf("could not start CPU profile: %w", err),
						closeErr,
					)
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cpuprofileFile != nil {
				pprof.StopCPUProfile()
				if err := cpuprofileFile.Close(); err != nil {
					return fmt.Errorf("closing CPU profile: %w", err)
				}
			}
			return nil
		},
	}
)

func init() {
	config.Defaults(viper.GetViper())

	// Root flags (persistent across all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringP(config.KeyProject, "p", ".", "Project directory")
	flags.StringP(config.KeyOutput, "o", "", "Output file (default: stdout)")
	flags.String(config.KeyConfig, "", "Config file (default: scatola.{yaml,toml,json} in the project)")
	flags.String(config.KeyProvider, "esm.sh", "CDN provider (esm.sh, unpkg, jsdelivr)")
	flags.String(config.KeyEntry, "main.tsx", "Entry file of the preview")
	flags.String(config.KeyJSXImportSource, "react", "JSX import source")
	flags.StringSlice(config.KeyInclude, nil, "Project source globs (default: **/*.{ts,tsx,js,jsx,css})")
	flags.Int(config.KeyParallel, 4, "Concurrent declaration fetches")
	flags.Duration(config.KeyTimeout, 0, "Time limit for network and build work (default 30s)")
	flags.Bool(config.KeyMinify, false, "Minify preview builds")
	flags.BoolP(config.KeyVerbose, "v", false, "Log debug output")
	flags.StringVar(&cpuprofile, "cpuprofile", "", "Write CPU profile to file")

	for _, key := range []string{
		config.KeyProject, config.KeyOutput, config.KeyConfig, config.KeyProvider,
		config.KeyEntry, config.KeyJSXImportSource, config.KeyInclude, config.KeyParallel,
		config.KeyTimeout, config.KeyMinify, config.KeyVerbose,
	} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(build.Cmd)
	rootCmd.AddCommand(types.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(importmap.Cmd)
	rootCmd.AddCommand(version.Cmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
