package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/stockline-backend/pkg/config"
	"github.com/angelmondragon/stockline-backend/pkg/logger"
)

// Store holds all live sessions in memory. Access to a single session is
// serialized: the mutation callback runs while holding that session's lock,
// so two rapid events for the same conversation can never interleave.
// Sessions idle past the TTL are evicted by a background sweep; losing a
// draft loses nothing durable.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry

	idleTTL       time.Duration
	sweepInterval time.Duration
	logg          *logger.Logger

	stopOnce sync.Once
	done     chan struct{}
}

type entry struct {
	mu       sync.Mutex
	session  Session
	lastSeen time.Time
}

// NewStore builds a session store from the session configuration.
func NewStore(cfg config.SessionConfig, logg *logger.Logger) *Store {
	return &Store{
		sessions:      make(map[string]*entry),
		idleTTL:       cfg.IdleTTL,
		sweepInterval: cfg.SweepInterval,
		logg:          logg,
		done:          make(chan struct{}),
	}
}

// StartSweeper launches the idle-eviction loop. It stops when ctx is
// canceled or Stop is called.
func (s *Store) StartSweeper(ctx context.Context) {
	if s.sweepInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				evicted := s.EvictIdle(time.Now())
				if evicted > 0 && s.logg != nil {
					s.logg.Info(ctx, fmt.Sprintf("evicted %d idle sessions", evicted))
				}
			}
		}
	}()
}

// Stop terminates the sweeper loop.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Mutate runs fn against the session, creating it on first contact. The
// callback owns the session exclusively for its whole duration; concurrent
// calls for the same ID queue behind it.
func (s *Store) Mutate(ctx context.Context, sessionID string, fn func(sess *Session) error) error {
	if sessionID == "" {
		return fmt.Errorf("session id must not be empty")
	}

	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	if !ok {
		e = &entry{session: Session{ID: sessionID}}
		s.sessions[sessionID] = e
	}
	e.lastSeen = time.Now()
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(&e.session); err != nil {
		return err
	}
	e.session.UpdatedAt = time.Now()
	return nil
}

// Peek returns a snapshot of the session without creating it.
func (s *Store) Peek(sessionID string) (Session, bool) {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return Session{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot := e.session
	snapshot.Draft.Lines = append([]DraftLine(nil), e.session.Draft.Lines...)
	return snapshot, true
}

// Clear drops the session. Clearing an unknown session is a no-op, so
// cancellation is idempotent.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle removes sessions whose last activity is older than the idle TTL
// and reports how many were dropped.
func (s *Store) EvictIdle(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
