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

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestCharmLevels(t *testing.T) {
	var buf bytes.Buffer
	quiet := New(&buf, false)
	quiet.Debug("hidden %d", 1)
	quiet.Warning("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Errorf("debug message logged without verbose: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("warning missing from output: %q", out)
	}

	buf.Reset()
	New(&buf, true).Debug("visible %s", "now")
	if !strings.Contains(buf.String(), "visible now") {
		t.Errorf("verbose logger dropped debug message: %q", buf.String())
	}
}

func TestCharmWith(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).With("session", "abc").Info("ready")
	if !strings.Contains(buf.String(), "session=abc") {
		t.Errorf("expected key/value in output, got %q", buf.String())
	}
}

func TestCharmImplementsLogger(t *testing.T) {
	var _ Logger = New(&bytes.Buffer{}, false)
}
