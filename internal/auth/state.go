package auth

import (
	"crypto/rand"
	"sync"
	"time"
)

// pendingLogin is what the server remembers between redirect and callback.
type pendingLogin struct {
	provider string
	verifier string
	expires  time.Time
}

// stateStore holds in-flight logins keyed by state token. Each state can be
// consumed once.
type stateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	logins map[string]pendingLogin
}

func newStateStore(ttl time.Duration, now func() time.Time) *stateStore {
	return &stateStore{ttl: ttl, now: now, logins: make(map[string]pendingLogin)}
}

// mint records a new login for provider and returns its state token.
func (s *stateStore) mint(provider, verifier string) string {
	state := rand.Text()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, p := range s.logins {
		if now.After(p.expires) {
			delete(s.logins, k)
		}
	}
	s.logins[state] = pendingLogin{provider: provider, verifier: verifier, expires: now.Add(s.ttl)}
	return state
}

// consume removes state and returns its login if it exists, has not expired
// and was started for provider.
func (s *stateStore) consume(state, provider string) (pendingLogin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.logins[state]
	if !ok {
		return pendingLogin{}, false
	}
	delete(s.logins, state)
	if s.now().After(p.expires) || p.provider != provider {
		return pendingLogin{}, false
	}
	return p, true
}
