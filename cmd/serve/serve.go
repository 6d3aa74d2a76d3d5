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

// Package serve provides the serve command for scatola.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/scatola/fs"
	"bennypowers.dev/scatola/internal/config"
	"bennypowers.dev/scatola/playground"
	"bennypowers.dev/scatola/server"
)

// Cmd is the serve command that runs the playground HTTP API.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve playground sessions over HTTP",
	Long: `Serve the playground HTTP API. Each POST /sessions starts a session from
the project directory (or the starter project), with the seed packages'
declarations loaded.`,
	Example: `  # Serve the starter project on :8080
  scatola serve

  # Serve a project, without seeding declarations
  scatola serve --project ./demo --addr 127.0.0.1:3000 --no-seed`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("addr", ":8080", "Listen address")
	Cmd.Flags().Duration("ttl", server.DefaultTTL, "Idle session lifetime")
	Cmd.Flags().Bool("no-seed", false, "Don't load seed declarations into new sessions")
}

func run(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	addr, _ := flags.GetString("addr")
	ttl, _ := flags.GetDuration("ttl")
	noSeed, _ := flags.GetBool("no-seed")
	if ttl <= 0 {
		return fmt.Errorf("invalid ttl %s: must be positive", ttl)
	}

	v := viper.GetViper()
	logger := config.Logger(v)
	if _, err := config.Provider(v); err != nil {
		return err
	}

	dir, err := config.ProjectDir(v)
	if err != nil {
		return err
	}
	project, err := playground.LoadProject(fs.NewOSFileSystem(), dir, v.GetStringSlice(config.KeyInclude))
	if err != nil {
		return err
	}
	if len(project.Files) == 0 {
		logger.Info("No sources in %s, serving the starter project", dir)
	}

	seeds := v.GetStringSlice(config.KeySeed)
	timeout := v.GetDuration(config.KeyTimeout)
	factory := func(ctx context.Context) (*playground.Session, error) {
		session, err := config.Session(v, project, logger)
		if err != nil {
			return nil, err
		}
		if noSeed || len(seeds) == 0 {
			return session, nil
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := session.Seed(ctx, seeds...); err != nil {
			logger.Warning("Seeding session: %v", err)
		}
		return session, nil
	}

	sessions := server.NewSessions(ttl)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(factory).WithSessions(sessions).WithLogger(logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(ttl / 4)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Cleanup(); n > 0 {
					logger.Debug("Expired %d sessions", n)
				}
			}
		}
	}()

	errs := make(chan error, 1)
	go func() {
		logger.Info("Serving on %s", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("Shutting down")
	return srv.Shutdown(shutdownCtx)
}
