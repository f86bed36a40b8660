package liveness

import (
	"time"

	"facegate.io/infrastructure/logger"
	gocache "github.com/patrickmn/go-cache"
)

// SessionRegistry is the injected store for in-flight sessions. Lookup is
// safe under concurrent access from many sessions' callers; every session is
// dropped either when its own timers declare it terminal or, as a backstop,
// when the cache TTL evicts it. Nothing here is durable: a liveness session
// is not a secret worth retaining.
type SessionRegistry struct {
	cfg      Config
	sessions *gocache.Cache

	// invoked off-lock whenever any session in this registry turns terminal
	onTerminal func(*Session)
}

func NewSessionRegistry(cfg Config) *SessionRegistry {
	r := &SessionRegistry{
		cfg: cfg,
		// TTL backstop slightly above the session timeout so the session's
		// own timer is the one that normally fires first
		sessions: gocache.New(cfg.SessionTimeout+cfg.TerminalLinger, time.Minute),
	}
	r.sessions.OnEvicted(func(id string, value interface{}) {
		session, ok := value.(*Session)
		if !ok {
			return
		}
		session.Abandon(ReasonSessionExpired)
	})
	return r
}

// SetOnTerminal registers a registry-wide terminal hook (webhook delivery,
// quota release). Must be called before sessions are created.
func (r *SessionRegistry) SetOnTerminal(hook func(*Session)) {
	r.onTerminal = hook
}

// Create builds a session, wires its terminal hook and stores it, enforcing
// the outstanding-session cap.
func (r *SessionRegistry) Create(deviceID string, opts CreateOptions) (*Session, error) {
	if r.sessions.ItemCount() >= r.cfg.MaxActiveSessions {
		logger.Warning("session registry at capacity", logger.LoggerOptions{
			Key:  "capacity",
			Data: r.cfg.MaxActiveSessions,
		})
		return nil, ErrRegistryCapacity
	}
	session, err := NewSession(r.cfg, deviceID, opts)
	if err != nil {
		return nil, err
	}
	session.SetOnTerminal(func(s *Session) {
		// keep the terminal session readable for a short linger so the
		// caller can still finalize, then let the TTL drop it
		r.sessions.Set(s.ID(), s, r.cfg.TerminalLinger)
		if r.onTerminal != nil {
			r.onTerminal(s)
		}
	})
	r.sessions.Set(session.ID(), session, gocache.DefaultExpiration)
	return session, nil
}

func (r *SessionRegistry) Get(id string) (*Session, bool) {
	value, found := r.sessions.Get(id)
	if !found {
		return nil, false
	}
	session, ok := value.(*Session)
	return session, ok
}

// Remove drops a session immediately. Deleting fires the eviction backstop,
// so a still-live session is abandoned as expired before it disappears;
// terminal sessions are unaffected since Abandon is a no-op on them.
func (r *SessionRegistry) Remove(id string) {
	r.sessions.Delete(id)
}

func (r *SessionRegistry) ActiveCount() int {
	return r.sessions.ItemCount()
}
