package session

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"review-eval-app/internal/dataset"
	"review-eval-app/internal/helpers"
)

// Session holds everything scoped to one rater's visit: the blinded display
// order drawn per paper and the in-progress rating values. Nothing in here is
// shared across sessions or persisted.
type Session struct {
	Token  string
	UserID string

	mu       sync.Mutex
	orders   map[string][2]dataset.Variant
	ratings  map[string]string
	lastSeen time.Time
}

// Order returns the display order for a paper: slot A gets the first variant,
// slot B the second. The first access draws a uniformly random permutation;
// every later access within the session returns the same binding, so
// navigating away and back never reshuffles.
func (s *Session) Order(paperID string) [2]dataset.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order, ok := s.orders[paperID]; ok {
		return order
	}
	order := [2]dataset.Variant{dataset.Variant53, dataset.Variant55}
	if rand.Intn(2) == 1 {
		order[0], order[1] = order[1], order[0]
	}
	s.orders[paperID] = order
	return order
}

func (s *Session) SetRating(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[key] = value
}

// Rating returns the stored value for a control key, or "" when the control
// has never been touched.
func (s *Session) Rating(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ratings[key]
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// Store hands out and tracks sessions by token.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: map[string]*Session{},
		ttl:      ttl,
	}
}

func (st *Store) Create(userID string) *Session {
	s := &Session{
		Token:    helpers.GenerateRandomString(24),
		UserID:   userID,
		orders:   map[string][2]dataset.Variant{},
		ratings:  map[string]string{},
		lastSeen: time.Now(),
	}
	st.mu.Lock()
	st.sessions[s.Token] = s
	st.mu.Unlock()
	return s
}

func (st *Store) Get(token string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[token]
	st.mu.Unlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// Sweep drops sessions idle for longer than the TTL and returns how many it
// evicted.
func (st *Store) Sweep() int {
	cutoff := time.Now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	evicted := 0
	for token, s := range st.sessions {
		if s.idleSince(cutoff) {
			delete(st.sessions, token)
			evicted++
		}
	}
	return evicted
}

// StartJanitor sweeps on an interval for the lifetime of the process.
func (st *Store) StartJanitor(interval time.Duration) {
	go func() {
		for {
			time.Sleep(interval)
			if n := st.Sweep(); n > 0 {
				log.Printf("Evicted %d idle sessions\n", n)
			}
		}
	}()
}
