package kotclient

import (
	"sync"

	"kot-system/internal/models"
)

// Session is the terminal's logged-in identity: the access token plus the
// staff user whose id and name stamp new orders as the waiter. It replaces
// any ambient global state with one explicit object handed to the
// components that need identity.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.UserInfo
}

func NewSession() *Session {
	return &Session{}
}

// Login stores the identity for the rest of the terminal session.
func (s *Session) Login(token string, user models.UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
}

// Logout clears the session.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Waiter returns the identity to stamp on a new order. Both values are zero
// when nobody is logged in; orders may still be placed anonymously.
func (s *Session) Waiter() (*int64, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, ""
	}
	id := s.user.ID
	return &id, s.user.Username
}
