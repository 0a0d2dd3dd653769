// Package auth binds client sessions to user identities and decides whether a
// caller may mutate a post. The session handle is opaque here; the cookie
// transport is wired by the router.
package auth

import (
	"context"
	"errors"

	"github.com/gin-contrib/sessions"

	"github.com/miniblog/miniblog/models"
	"github.com/miniblog/miniblog/store"
)

// ErrAuthFailure is returned for every failed login. Unknown usernames and
// wrong passwords are deliberately indistinguishable to the caller.
var ErrAuthFailure = errors.New("invalid username or password")

const sessionKeyUserID = "user_id"

// Manager verifies credentials and manages the session-to-user binding.
type Manager struct {
	users store.UserStore
}

// NewManager creates a Manager backed by the given credential store.
func NewManager(users store.UserStore) *Manager {
	return &Manager{users: users}
}

// Login verifies the credentials and, on success, binds the session to the
// user id. Any failure yields the generic ErrAuthFailure.
func (m *Manager) Login(ctx context.Context, session sessions.Session, username, password string) (*models.User, error) {
	user, err := m.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAuthFailure
		}
		return nil, err
	}
	if !m.users.VerifyPassword(user, password) {
		return nil, ErrAuthFailure
	}

	session.Set(sessionKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout unconditionally clears the session-to-user binding. Calling it on an
// anonymous session is a no-op.
func (m *Manager) Logout(session sessions.Session) error {
	session.Clear()
	return session.Save()
}

// CurrentUser resolves the session's bound user id through the credential
// store. A session whose id no longer resolves is treated as anonymous.
func (m *Manager) CurrentUser(ctx context.Context, session sessions.Session) (*models.User, bool) {
	id, ok := boundUserID(session)
	if !ok {
		return nil, false
	}
	user, err := m.users.FindByID(ctx, id)
	if err != nil {
		return nil, false
	}
	return user, true
}

// boundUserID reads the user id out of the session, tolerating the numeric
// widenings the session codec may apply.
func boundUserID(session sessions.Session) (uint, bool) {
	switch v := session.Get(sessionKeyUserID).(type) {
	case uint:
		return v, true
	case uint64:
		return uint(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
