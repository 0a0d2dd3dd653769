package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/miniblog/miniblog/models"
	"github.com/miniblog/miniblog/utils"
)

// MemoryStore implements UserStore and PostStore in process memory. It backs
// tests and database-less development runs; data does not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	hashCost int

	users      map[uint]*models.User
	nextUserID uint

	posts      map[uint]*models.Post
	nextPostID uint
}

// NewMemoryStore creates an empty MemoryStore with the given bcrypt cost.
func NewMemoryStore(hashCost int) *MemoryStore {
	return &MemoryStore{
		hashCost:   hashCost,
		users:      make(map[uint]*models.User),
		nextUserID: 1,
		posts:      make(map[uint]*models.Post),
		nextPostID: 1,
	}
}

// Register creates a new user, rejecting duplicate usernames and emails.
func (m *MemoryStore) Register(ctx context.Context, username, email, rawPassword string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || rawPassword == "" {
		return nil, ErrValidation
	}

	hash, err := utils.HashPassword(rawPassword, m.hashCost)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return nil, ErrDuplicateIdentity
		}
	}

	user := &models.User{
		ID:           m.nextUserID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	m.nextUserID++
	m.users[user.ID] = user

	out := *user
	return &out, nil
}

// FindByUsername returns the user with the given username.
func (m *MemoryStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// FindByID returns the user with the given id.
func (m *MemoryStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

// VerifyPassword checks rawPassword against the stored bcrypt hash.
func (m *MemoryStore) VerifyPassword(user *models.User, rawPassword string) bool {
	if user == nil {
		return false
	}
	return utils.CheckPassword(user.PasswordHash, rawPassword)
}

// Create persists a new post owned by ownerID.
func (m *MemoryStore) Create(ctx context.Context, ownerID uint, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" || content == "" {
		return nil, ErrValidation
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	owner, ok := m.users[ownerID]
	if !ok {
		return nil, ErrNotFound
	}

	post := &models.Post{
		ID:        m.nextPostID,
		UserID:    ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	m.nextPostID++
	m.posts[post.ID] = post

	out := *post
	out.User = *owner
	return &out, nil
}

// Get returns a single post including its author.
func (m *MemoryStore) Get(ctx context.Context, id uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	if owner, ok := m.users[p.UserID]; ok {
		out.User = *owner
	}
	return &out, nil
}

// ListRecent returns one page of the global feed, newest first.
func (m *MemoryStore) ListRecent(ctx context.Context, page, pageSize int) ([]models.Post, bool, error) {
	return m.listPage(func(p *models.Post) bool { return true }, page, pageSize)
}

// ListByUser returns one page of a single author's posts, newest first.
func (m *MemoryStore) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]models.Post, bool, error) {
	return m.listPage(func(p *models.Post) bool { return p.UserID == userID }, page, pageSize)
}

func (m *MemoryStore) listPage(match func(*models.Post) bool, page, pageSize int) ([]models.Post, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if !match(p) {
			continue
		}
		out := *p
		if owner, ok := m.users[p.UserID]; ok {
			out.User = *owner
		}
		all = append(all, out)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return []models.Post{}, false, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], end < len(all), nil
}

// Update replaces title and content of an existing post.
func (m *MemoryStore) Update(ctx context.Context, id uint, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" || content == "" {
		return nil, ErrValidation
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Title = title
	p.Content = content

	out := *p
	if owner, ok := m.users[p.UserID]; ok {
		out.User = *owner
	}
	return &out, nil
}

// Delete removes a post.
func (m *MemoryStore) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}
