// Package store persists users and posts. Handlers receive the two store
// interfaces explicitly; the gorm implementations back them with MySQL and the
// in-memory implementation serves tests and database-less development.
package store

import (
	"context"
	"errors"

	"github.com/miniblog/miniblog/models"
)

var (
	// ErrNotFound is returned when the requested user or post does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateIdentity is returned when a registration reuses a username or email.
	ErrDuplicateIdentity = errors.New("username or email already exists")
	// ErrValidation is returned when a required field is missing or empty.
	ErrValidation = errors.New("missing required field")
)

// UserStore manages user identities and credential verification.
type UserStore interface {
	// Register hashes rawPassword and persists a new user. The raw password is
	// never stored or logged.
	Register(ctx context.Context, username, email, rawPassword string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	// VerifyPassword reports whether rawPassword matches the stored hash.
	VerifyPassword(user *models.User, rawPassword string) bool
}

// PostStore manages posts. ListRecent and ListByUser return pages ordered by
// creation time descending, ties broken by id descending; pages are 1-indexed
// and a page past the end yields an empty slice rather than an error.
type PostStore interface {
	Create(ctx context.Context, ownerID uint, title, content string) (*models.Post, error)
	Get(ctx context.Context, id uint) (*models.Post, error)
	ListRecent(ctx context.Context, page, pageSize int) ([]models.Post, bool, error)
	ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]models.Post, bool, error)
	// Update replaces title and content in place, leaving id, owner and the
	// creation timestamp untouched.
	Update(ctx context.Context, id uint, title, content string) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
}
