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

// Package logging adapts charmbracelet/log to the small Logger interface
// the resolution and bundling packages accept.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Logger is an interface for logging messages during resolution and
// bundling. A nil Logger means silence.
type Logger interface {
	Warning(format string, args ...any)
	Debug(format string, args ...any)
}

// Charm implements Logger on top of a charmbracelet logger.
type Charm struct {
	logger *log.Logger
}

// New creates a Logger writing to w. Verbose enables debug output.
// Timestamps are formatted as "HH:MM:SS.ms".
func New(w io.Writer, verbose bool) *Charm {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &Charm{logger: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})}
}

// With returns a Logger that adds the key/value pairs to every message.
func (c *Charm) With(keyvals ...any) *Charm {
	return &Charm{logger: c.logger.With(keyvals...)}
}

func (c *Charm) Warning(format string, args ...any) { c.logger.Warnf(format, args...) }
func (c *Charm) Debug(format string, args ...any)   { c.logger.Debugf(format, args...) }
func (c *Charm) Info(format string, args ...any)    { c.logger.Infof(format, args...) }
func (c *Charm) Error(format string, args ...any)   { c.logger.Errorf(format, args...) }
