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

package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"bennypowers.dev/scatola/playground"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	session  *playground.Session
	lastUsed time.Time
}

// Sessions holds live playground sessions by id. Sessions expire after
// ttl without use.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

// NewSessions creates an empty session table.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sessions{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Add stores s under a fresh id and returns the id.
func (t *Sessions) Add(s *playground.Session) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.NewString()
	t.entries[id] = &entry{session: s, lastUsed: t.now()}
	return id
}

// Get returns the session for id and marks it used.
func (t *Sessions) Get(id string) (*playground.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := t.now()
	if now.Sub(e.lastUsed) > t.ttl {
		delete(t.entries, id)
		return nil, ErrSessionNotFound
	}
	e.lastUsed = now
	return e.session, nil
}

// Delete removes id. It reports whether the session existed.
func (t *Sessions) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.entries[id]
	delete(t.entries, id)
	return ok
}

// Cleanup removes expired sessions and returns how many were removed.
func (t *Sessions) Cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for id, e := range t.entries {
		if now.Sub(e.lastUsed) > t.ttl {
			delete(t.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of sessions, expired ones included.
func (t *Sessions) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
