package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/natjoub/factory/services/telegrambot/internal/backend"
)

var ErrNotLoggedIn = errors.New("chat is not logged in")

// refreshSkew refreshes tokens slightly before they expire so a token
// handed to a backend call does not die in flight.
const refreshSkew = time.Minute

type Session struct {
	UserID       string
	Role         string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*backend.TokenPair, error)
}

// Store holds per-chat token sessions in memory. A session lives as
// long as its refresh token: when a refresh fails the session is
// dropped and the chat has to log in again.
type Store struct {
	mu        sync.Mutex
	refresher Refresher
	sessions  map[int64]*Session
	now       func() time.Time
}

func NewStore(r Refresher) *Store {
	return &Store{
		refresher: r,
		sessions:  make(map[int64]*Session),
		now:       time.Now,
	}
}

func (s *Store) Put(chatID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = &sess
}

func (s *Store) Get(chatID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

func (s *Store) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// AccessToken returns a token valid for at least refreshSkew, rotating
// the pair through the auth service when the current one is close to
// expiry. The lock is not held across the refresh call, so a slow auth
// service stalls only the chat being refreshed.
func (s *Store) AccessToken(ctx context.Context, chatID int64) (string, error) {
	s.mu.Lock()
	sess, ok := s.sessions[chatID]
	if !ok {
		s.mu.Unlock()
		return "", ErrNotLoggedIn
	}
	if s.now().Add(refreshSkew).Before(sess.ExpiresAt) {
		token := sess.AccessToken
		s.mu.Unlock()
		return token, nil
	}
	presented := sess.RefreshToken
	s.mu.Unlock()

	pair, err := s.refresher.Refresh(ctx, presented)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok = s.sessions[chatID]
	if !ok {
		// Logged out while we were refreshing.
		return "", ErrNotLoggedIn
	}
	if sess.RefreshToken != presented {
		// Another goroutine rotated the pair first; its result wins.
		return sess.AccessToken, nil
	}
	if err != nil {
		delete(s.sessions, chatID)
		return "", ErrNotLoggedIn
	}
	sess.AccessToken = pair.AccessToken
	sess.RefreshToken = pair.RefreshToken
	sess.ExpiresAt = s.now().Add(time.Duration(pair.ExpiresIn) * time.Second)
	return sess.AccessToken, nil
}
