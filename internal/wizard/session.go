package wizard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
)

// Session владеет одним черновиком. Изменения одной сессии сериализуются,
// разные сессии независимы.
type Session struct {
	ID uuid.UUID

	mu    sync.Mutex
	draft Draft
	// lastSeen в UnixNano читается без mu: Sweep не ждёт долгих Update.
	lastSeen atomic.Int64
	now      func() time.Time
}

// Snapshot возвращает копию черновика.
func (s *Session) Snapshot() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Update применяет fn к копии черновика и сохраняет её только при успехе.
func (s *Session) Update(fn func(d *Draft) error) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.draft
	if err := fn(&next); err != nil {
		return s.draft, err
	}
	s.draft = next
	s.touch()
	return s.draft, nil
}

// Dispatch применяет одно действие.
func (s *Session) Dispatch(a Action) (Draft, error) {
	return s.Update(func(d *Draft) error {
		return Apply(d, a)
	})
}

func (s *Session) touch() {
	s.lastSeen.Store(s.now().UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// SessionStore хранит черновики в памяти процесса с TTL простоя.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock подменяет часы (для тестов).
func (st *SessionStore) WithClock(now func() time.Time) *SessionStore {
	st.now = now
	return st
}

func (st *SessionStore) Create(locale valueobject.Locale) *Session {
	s := &Session{
		ID:    uuid.New(),
		draft: *NewDraft(locale),
		now:   st.now,
	}
	s.touch()

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get возвращает сессию и продлевает её; истёкшая сессия удаляется.
func (st *SessionStore) Get(id uuid.UUID) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	if st.ttl > 0 && s.idleSince(st.now()) > st.ttl {
		st.Delete(id)
		return nil, apperror.ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

func (st *SessionStore) Delete(id uuid.UUID) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep удаляет брошенные черновики и возвращает их число.
func (st *SessionStore) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	now := st.now()

	st.mu.RLock()
	candidates := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		candidates = append(candidates, s)
	}
	st.mu.RUnlock()

	removed := 0
	for _, s := range candidates {
		if s.idleSince(now) <= st.ttl {
			continue
		}
		st.mu.Lock()
		if st.sessions[s.ID] == s {
			delete(st.sessions, s.ID)
			removed++
		}
		st.mu.Unlock()
	}
	return removed
}

// Run периодически вызывает Sweep до отмены контекста.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := logger.Component("wizard_sessions")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				log.WithField("removed", n).Debug("брошенные черновики удалены")
			}
		}
	}
}
