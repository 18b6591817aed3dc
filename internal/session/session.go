package session

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes real logins from ephemeral guest sessions.
// Cart, orders and wishlist require a registered session.
type TokenType string

const (
	TokenRegistered TokenType = "registered"
	TokenGuest      TokenType = "guest"
)

// maxAuthReloads caps how many times a 401 may trigger the reload hook in a
// single process, so a persistently bad token cannot loop forever.
const maxAuthReloads = 2

// ErrNotAuthenticated is returned by callers that require a registered
// session before issuing a request.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Session is the one piece of shared mutable state in the client: the
// persisted bearer token and its type. All reads and writes go through this
// type; the API client never touches the file directly.
type Session struct {
	mu          sync.RWMutex
	path        string
	token       string
	tokenType   TokenType
	reloadCount int
	loginActive bool
	onReload    func()
}

type sessionFile struct {
	Token     string    `json:"token"`
	TokenType TokenType `json:"tokenType"`
}

// New returns a session backed by the given file. An empty path keeps the
// session in memory only. A missing or unreadable file starts logged out.
func New(path string) *Session {
	s := &Session{path: path}
	if path == "" {
		return s
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var stored sessionFile
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("[Session] discarding unreadable session file %s: %v", path, err)
		return s
	}

	s.token = stored.Token
	s.tokenType = stored.TokenType
	return s
}

// Token returns the current bearer token, or empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Type returns the current token type.
func (s *Session) Type() TokenType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenType
}

// IsAuthenticated reports whether a usable token is present. Tokens with a
// readable exp claim that has already passed count as logged out.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && !tokenExpired(s.token)
}

// IsRegistered reports whether the session belongs to a real login rather
// than a guest.
func (s *Session) IsRegistered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.tokenType == TokenRegistered && !tokenExpired(s.token)
}

// SetToken stores a new token and persists it.
func (s *Session) SetToken(token string, tokenType TokenType) error {
	s.mu.Lock()
	s.token = token
	s.tokenType = tokenType
	s.mu.Unlock()
	return s.persist()
}

// Clear removes the token and its type, both in memory and on disk.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.tokenType = ""
	s.mu.Unlock()
	return s.persist()
}

// OnReload registers the hook invoked when a 401 invalidates the session.
// The UI layer uses it to restart itself into the login flow.
func (s *Session) OnReload(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = fn
}

// SetLoginActive marks that the login flow is on screen. While active, a 401
// clears the token but does not fire the reload hook.
func (s *Session) SetLoginActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginActive = active
}

// HandleUnauthorized applies the 401 policy: drop the bad token, then fire
// the reload hook at most maxAuthReloads times per process, and never while
// the login flow is already active.
func (s *Session) HandleUnauthorized() {
	s.mu.Lock()
	s.token = ""
	s.tokenType = ""

	if s.reloadCount >= maxAuthReloads {
		s.mu.Unlock()
		_ = s.persist()
		log.Printf("[Session] authentication failed: reached max reload attempts for 401")
		return
	}
	s.reloadCount++

	reload := s.onReload
	skip := s.loginActive
	s.mu.Unlock()

	_ = s.persist()

	if reload != nil && !skip {
		reload()
	}
}

// ReloadCount reports how many 401-triggered reloads have fired.
func (s *Session) ReloadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reloadCount
}

func (s *Session) persist() error {
	s.mu.RLock()
	path := s.path
	stored := sessionFile{Token: s.token, TokenType: s.tokenType}
	s.mu.RUnlock()

	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// tokenExpired inspects the exp claim without verifying the signature; the
// backend is the authority, this only avoids sending a token that is known
// to be dead. Opaque tokens are assumed live.
func tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
