package syncer

import (
	"sync"
	"time"

	"github.com/IAmMasterCraft/expense-tracker/internal/util"
)

// Session holds the mutable sync state for this process: the bearer
// credential for the backup service and the connectivity signal. It is
// constructed once at startup and passed explicitly to the reconciler
// and scheduler rather than kept as ambient globals.
type Session struct {
	mu         sync.Mutex
	token      string
	expiresAt  time.Time
	online     bool
	defaultTTL time.Duration
}

// NewSession creates a session that assumes connectivity until told
// otherwise. defaultTTL bounds the lifetime of opaque credentials whose
// expiry cannot be read out of the token.
func NewSession(defaultTTL time.Duration) *Session {
	return &Session{online: true, defaultTTL: defaultTTL}
}

// SetToken installs a credential obtained out-of-band. A zero expiresAt
// means unknown: the exp claim is used when the token is JWT-shaped,
// the default TTL otherwise.
func (s *Session) SetToken(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	switch {
	case !expiresAt.IsZero():
		s.expiresAt = expiresAt
	case token == "":
		s.expiresAt = time.Time{}
	default:
		if exp, ok := util.TokenExpiry(token); ok {
			s.expiresAt = exp
		} else {
			s.expiresAt = time.Now().Add(s.defaultTTL)
		}
	}
}

// ClearToken drops the credential, e.g. after the remote rejects it.
func (s *Session) ClearToken() {
	s.SetToken("", time.Time{})
}

// Token returns the current bearer credential, possibly empty.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Valid reports whether a credential is present and not yet expired.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && time.Now().Before(s.expiresAt)
}

// SetOnline records the connectivity signal from the outer layer.
func (s *Session) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = online
}

// Online reports the last known connectivity state.
func (s *Session) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}
