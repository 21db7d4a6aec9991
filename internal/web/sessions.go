package web

import (
	"sync"
	"time"

	"github.com/JonMunkholm/pupilbridge/internal/core"
)

// sessionTTL is how long an idle session keeps its runner.
const sessionTTL = 30 * time.Minute

type sessionKey struct {
	id         string
	importType string
}

type sessionEntry struct {
	runner   *core.Runner
	lastUsed time.Time
}

// sessions keeps one core.Runner per editing session and import type so a
// new validation request cancels the previous one of the same session.
type sessions struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[sessionKey]*sessionEntry
}

func newSessions(ttl time.Duration) *sessions {
	return &sessions{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[sessionKey]*sessionEntry),
	}
}

// runner returns the runner of session id for v's import type, creating it
// on first use. An empty id yields a fresh runner that nothing else shares.
func (s *sessions) runner(id string, v *core.Validator, limiter *core.Limiter) *core.Runner {
	if id == "" {
		return core.NewRunner(v, limiter)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.Sub(e.lastUsed) > s.ttl {
			delete(s.entries, k)
		}
	}

	key := sessionKey{id: id, importType: v.Profile().ImportType}
	e, ok := s.entries[key]
	if !ok {
		e = &sessionEntry{runner: core.NewRunner(v, limiter)}
		s.entries[key] = e
	}
	e.lastUsed = now
	return e.runner
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
