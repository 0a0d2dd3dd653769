package auth_test

import (
	"context"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/miniblog/miniblog/auth"
	"github.com/miniblog/miniblog/store"
)

// fakeSession implements sessions.Session on a plain map, standing in for the
// cookie-backed session the router provides.
type fakeSession struct {
	values map[interface{}]interface{}
	saved  int
}

func newFakeSession() *fakeSession {
	return &fakeSession{values: make(map[interface{}]interface{})}
}

func (s *fakeSession) ID() string { return "fake" }
func (s *fakeSession) Get(key interface{}) interface{} { return s.values[key] }
func (s *fakeSession) Set(key interface{}, val interface{}) { s.values[key] = val }
func (s *fakeSession) Delete(key interface{}) { delete(s.values, key) }
func (s *fakeSession) Clear() { s.values = make(map[interface{}]interface{}) }
func (s *fakeSession) AddFlash(value interface{}, vars ...string) {}
func (s *fakeSession) Flashes(vars ...string) []interface{} { return nil }
func (s *fakeSession) Options(sessions.Options) {}
func (s *fakeSession) Save() error { s.saved++; return nil }

func newManager(t *testing.T) (*auth.Manager, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore(bcrypt.MinCost)
	return auth.NewManager(mem), mem
}

func TestLoginBindsSession(t *testing.T) {
	mgr, mem := newManager(t)
	ctx := context.Background()

	registered, err := mem.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	session := newFakeSession()
	user, err := mgr.Login(ctx, session, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotZero(t, session.saved, "login must persist the session")

	current, ok := mgr.CurrentUser(ctx, session)
	require.True(t, ok)
	assert.Equal(t, "alice", current.Username)
}

func TestLoginFailureIsGeneric(t *testing.T) {
	mgr, mem := newManager(t)
	ctx := context.Background()

	_, err := mem.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	session := newFakeSession()

	// Unknown user and wrong password yield the same error.
	_, err = mgr.Login(ctx, session, "nobody", "pw1")
	assert.ErrorIs(t, err, auth.ErrAuthFailure)
	_, err = mgr.Login(ctx, session, "alice", "wrong")
	assert.ErrorIs(t, err, auth.ErrAuthFailure)

	// The session stays anonymous after a failed login.
	_, ok := mgr.CurrentUser(ctx, session)
	assert.False(t, ok)
}

func TestLogoutIsIdempotent(t *testing.T) {
	mgr, mem := newManager(t)
	ctx := context.Background()

	_, err := mem.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	session := newFakeSession()
	_, err = mgr.Login(ctx, session, "alice", "pw1")
	require.NoError(t, err)

	require.NoError(t, mgr.Logout(session))
	_, ok := mgr.CurrentUser(ctx, session)
	assert.False(t, ok)

	// Logging out an already-anonymous session is not an error.
	require.NoError(t, mgr.Logout(session))
}

func TestCurrentUserStaleBinding(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()

	// A session bound to an id that no longer resolves is anonymous.
	session := newFakeSession()
	session.Set("user_id", uint(42))
	_, ok := mgr.CurrentUser(ctx, session)
	assert.False(t, ok)
}

func TestCurrentUserToleratesWidenedID(t *testing.T) {
	mgr, mem := newManager(t)
	ctx := context.Background()

	user, err := mem.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	// Session codecs may hand back the id as a widened integer type.
	for _, stored := range []interface{}{user.ID, int(user.ID), int64(user.ID), float64(user.ID)} {
		session := newFakeSession()
		session.Set("user_id", stored)
		current, ok := mgr.CurrentUser(ctx, session)
		require.True(t, ok, "stored as %T", stored)
		assert.Equal(t, user.ID, current.ID)
	}
}
