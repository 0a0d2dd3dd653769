package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(bcrypt.MinCost)
}

func TestRegisterAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "pw1", user.PasswordHash)

	found, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	byID, err := s.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = s.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = s.Register(ctx, "alice", "other@x.com", "pw2")
	assert.ErrorIs(t, err, ErrDuplicateIdentity, "duplicate username rejected")

	_, err = s.Register(ctx, "alice2", "a@x.com", "pw2")
	assert.ErrorIs(t, err, ErrDuplicateIdentity, "duplicate email rejected")

	// No second row was created.
	_, err = s.FindByUsername(ctx, "alice2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, tc := range []struct{ username, email, password string }{
		{"", "a@x.com", "pw"},
		{"alice", "", "pw"},
		{"alice", "a@x.com", ""},
		{"   ", "a@x.com", "pw"},
	} {
		_, err := s.Register(ctx, tc.username, tc.email, tc.password)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestVerifyPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	// Deterministic across repeated calls.
	for i := 0; i < 3; i++ {
		assert.True(t, s.VerifyPassword(user, "pw1"))
		assert.False(t, s.VerifyPassword(user, "pw2"))
		assert.False(t, s.VerifyPassword(user, ""))
	}
	assert.False(t, s.VerifyPassword(nil, "pw1"))
}

func TestCreateAndGetPost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	post, err := s.Create(ctx, user.ID, "T", "C")
	require.NoError(t, err)
	assert.Equal(t, user.ID, post.UserID)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, time.UTC, post.CreatedAt.Location())

	got, err := s.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "alice", got.User.Username)

	_, err = s.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePostValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = s.Create(ctx, user.ID, "", "C")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.Create(ctx, user.ID, "T", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.Create(ctx, 999, "T", "C")
	assert.ErrorIs(t, err, ErrNotFound, "owner must exist at creation time")
}

func TestListRecentOrderingAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	ids := make([]uint, 0, 7)
	for i := 1; i <= 7; i++ {
		post, err := s.Create(ctx, user.ID, fmt.Sprintf("post %d", i), "body")
		require.NoError(t, err)
		ids = append(ids, post.ID)
	}

	page1, hasMore, err := s.ListRecent(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, page1, 5)
	assert.True(t, hasMore)
	// Newest first: the five most recently created posts.
	for i, p := range page1 {
		assert.Equal(t, ids[6-i], p.ID)
	}
	for i := 1; i < len(page1); i++ {
		assert.False(t, page1[i].CreatedAt.After(page1[i-1].CreatedAt), "timestamps must be non-increasing")
	}

	page2, hasMore, err := s.ListRecent(ctx, 2, 5)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.False(t, hasMore)
	assert.Equal(t, ids[1], page2[0].ID)
	assert.Equal(t, ids[0], page2[1].ID)

	// A page past the end is empty, not an error.
	page3, hasMore, err := s.ListRecent(ctx, 3, 5)
	require.NoError(t, err)
	assert.Empty(t, page3)
	assert.False(t, hasMore)
}

func TestListByUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	bob, err := s.Register(ctx, "bob", "b@x.com", "pw2")
	require.NoError(t, err)

	_, err = s.Create(ctx, alice.ID, "from alice", "body")
	require.NoError(t, err)
	_, err = s.Create(ctx, bob.ID, "from bob", "body")
	require.NoError(t, err)

	posts, hasMore, err := s.ListByUser(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.False(t, hasMore)
	assert.Equal(t, "from alice", posts[0].Title)
}

func TestUpdatePost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	post, err := s.Create(ctx, user.ID, "T", "C")
	require.NoError(t, err)

	updated, err := s.Update(ctx, post.ID, "T2", "C2")
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, "C2", updated.Content)
	assert.Equal(t, post.ID, updated.ID)
	assert.Equal(t, post.UserID, updated.UserID, "owner never changes")
	assert.Equal(t, post.CreatedAt, updated.CreatedAt, "creation timestamp never changes")

	_, err = s.Update(ctx, 999, "T", "C")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(ctx, post.ID, "", "C")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeletePost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	post, err := s.Create(ctx, user.ID, "T", "C")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, post.ID))
	_, err = s.Get(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing id reports NotFound and changes nothing.
	before, _, err := s.ListRecent(ctx, 1, 100)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Delete(ctx, 999), ErrNotFound)
	after, _, err := s.ListRecent(ctx, 1, 100)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}
