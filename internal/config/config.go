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

// Package config reads scatola's settings from viper: flags, SCATOLA_*
// environment variables and the scatola.{yaml,toml,json} config file.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"bennypowers.dev/scatola/cdn"
	"bennypowers.dev/scatola/internal/logging"
	"bennypowers.dev/scatola/playground"
	"bennypowers.dev/scatola/render"
	"bennypowers.dev/scatola/vfs"
)

// Keys read from viper.
const (
	KeyProject         = "project"
	KeyOutput          = "output"
	KeyConfig          = "config"
	KeyProvider        = "provider"
	KeyPackages        = "packages"
	KeySeed            = "seed"
	KeyEntry           = "entry"
	KeyJSXImportSource = "jsx-import-source"
	KeyParallel        = "parallel"
	KeyTimeout         = "timeout"
	KeyVerbose         = "verbose"
	KeyInclude         = "include"
	KeyMinify          = "minify"
)

// Defaults registers default values.
func Defaults(v *viper.Viper) {
	v.SetDefault(KeyProject, ".")
	v.SetDefault(KeyProvider, cdn.DefaultProvider.Name)
	v.SetDefault(KeyEntry, "main.tsx")
	v.SetDefault(KeyJSXImportSource, "react")
	v.SetDefault(KeyParallel, 4)
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeySeed, playground.DefaultSeeds)
	v.SetDefault(KeyInclude, playground.DefaultIncludes)
}

// Load reads the config file: the --config path if set, otherwise
// scatola.* in the project directory. A missing file is not an error.
func Load(v *viper.Viper) error {
	v.SetEnvPrefix("SCATOLA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("scatola")
		v.AddConfigPath(v.GetString(KeyProject))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Logger creates the CLI logger on stderr.
func Logger(v *viper.Viper) *logging.Charm {
	return logging.New(os.Stderr, v.GetBool(KeyVerbose))
}

// Provider returns the configured CDN provider.
func Provider(v *viper.Viper) (cdn.Provider, error) {
	name := v.GetString(KeyProvider)
	p := cdn.ProviderByName(name)
	if p == nil {
		return cdn.Provider{}, fmt.Errorf("unknown provider %q (valid: %s)", name, strings.Join(cdn.ProviderNames(), ", "))
	}
	return *p, nil
}

// ProjectDir returns the absolute project directory.
func ProjectDir(v *viper.Viper) (string, error) {
	dir, err := filepath.Abs(v.GetString(KeyProject))
	if err != nil {
		return "", fmt.Errorf("invalid project directory: %w", err)
	}
	return dir, nil
}

// Packages returns the registry for project: the default packages, then
// package.json dependencies mapped onto provider, then the configured
// packages. Later sources win.
func Packages(v *viper.Viper, provider cdn.Provider, project *playground.Project) map[string]string {
	packages := vfs.DefaultPackages()
	if project != nil {
		for name, version := range project.Dependencies {
			spec := name
			if version != "" && version != "*" && version != "latest" {
				spec = name + "@" + version
			}
			packages[name] = provider.PackageURL(spec)
			packages[name+"/"] = provider.PackageURL(spec) + "/"
		}
	}
	maps.Copy(packages, v.GetStringMapString(KeyPackages))
	return packages
}

// Session creates a playground session for project, with its
// index.html as the preview document when it has one.
func Session(v *viper.Viper, project *playground.Project, logger logging.Logger) (*playground.Session, error) {
	provider, err := Provider(v)
	if err != nil {
		return nil, err
	}

	cfg := playground.Config{
		Provider:        provider,
		Packages:        Packages(v, provider, project),
		Entry:           v.GetString(KeyEntry),
		JSXImportSource: v.GetString(KeyJSXImportSource),
		Parallel:        v.GetInt(KeyParallel),
		Minify:          v.GetBool(KeyMinify),
		Logger:          logger,
	}
	if project != nil {
		if len(project.Files) > 0 {
			cfg.Files = project.Files
		}
		if project.Document != nil {
			surface, err := render.Parse(strings.NewReader(string(project.Document)))
			if err != nil {
				return nil, err
			}
			cfg.Surface = surface
		}
	}
	return playground.New(cfg), nil
}
