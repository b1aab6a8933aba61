// Package auth handles credential-pair sign-in, opaque session tokens and
// the auth-state-changed subscription. Passwords are bcrypt-hashed; the
// permission flag lives in the store's permissions collection.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"saldo/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
)

// Session is a signed-in user's token and its validity window.
type Session struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// State is what auth-state watchers receive: the currently signed-in
// user, or nil when nobody is signed in for that session anymore.
type State struct {
	UserID string
	Email  string
}

type Service struct {
	users store.UserStore
	perms store.PermissionStore
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]Session
	watchers map[uint64]chan *State
	nextID   uint64
	now      func() time.Time
}

func NewService(users store.UserStore, perms store.PermissionStore, ttl time.Duration) *Service {
	return &Service{
		users:    users,
		perms:    perms,
		ttl:      ttl,
		sessions: make(map[string]Session),
		watchers: make(map[uint64]chan *State),
		now:      time.Now,
	}
}

// SignIn verifies the credential pair and issues a session token. The
// failure reason is deliberately uniform: a missing user and a wrong
// password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}

	session := Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	s.notify(&State{UserID: u.ID, Email: u.Email})
	return session, nil
}

// SignOut invalidates the session token. Unknown tokens are a no-op.
func (s *Service) SignOut(_ context.Context, token string) {
	s.mu.Lock()
	_, existed := s.sessions[token]
	delete(s.sessions, token)
	s.mu.Unlock()

	if existed {
		s.notify(nil)
	}
}

// SessionFor resolves a token to its live session. Expired sessions are
// pruned on access.
func (s *Service) SessionFor(token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	if s.now().After(session.ExpiresAt) {
		delete(s.sessions, token)
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

// CanEdit reports whether the user holds the editor permission flag.
func (s *Service) CanEdit(ctx context.Context, userID string) (bool, error) {
	return s.perms.CanEdit(ctx, userID)
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string, canEdit bool) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	id, err := s.users.CreateUser(ctx, store.User{Email: email, PasswordHash: string(hash)})
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	if err := s.perms.SetEditor(ctx, id, canEdit); err != nil {
		return "", fmt.Errorf("set permission flag: %w", err)
	}
	return id, nil
}

// StateSubscription delivers the signed-in identity (or nil) on every
// auth state change.
type StateSubscription struct {
	C <-chan *State

	once   sync.Once
	cancel func()
}

func (w *StateSubscription) Unsubscribe() {
	w.once.Do(w.cancel)
}

// Watch registers an auth-state watcher. Like the snapshot hub, each
// watcher holds at most one pending state; the latest wins.
func (s *Service) Watch() *StateSubscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan *State, 1)
	s.watchers[id] = ch

	return &StateSubscription{
		C: ch,
		cancel: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(ch)
			}
		},
	}
}

func (s *Service) notify(state *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}
