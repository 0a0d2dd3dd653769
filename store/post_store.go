package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/miniblog/miniblog/models"
)

// GormPostStore implements PostStore on a relational database.
type GormPostStore struct {
	db *gorm.DB
}

// NewGormPostStore creates a GormPostStore.
func NewGormPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

// Create persists a new post owned by ownerID, stamped with the current UTC time.
func (s *GormPostStore) Create(ctx context.Context, ownerID uint, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" || content == "" {
		return nil, ErrValidation
	}

	post := models.Post{
		UserID:    ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Get returns a single post including its author.
func (s *GormPostStore) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListRecent returns one page of the global feed, newest first.
func (s *GormPostStore) ListRecent(ctx context.Context, page, pageSize int) ([]models.Post, bool, error) {
	return s.listPage(ctx, s.db.WithContext(ctx).Model(&models.Post{}), page, pageSize)
}

// ListByUser returns one page of a single author's posts, newest first.
func (s *GormPostStore) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]models.Post, bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID)
	return s.listPage(ctx, q, page, pageSize)
}

func (s *GormPostStore) listPage(ctx context.Context, q *gorm.DB, page, pageSize int) ([]models.Post, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, false, err
	}

	var posts []models.Post
	offset := (page - 1) * pageSize
	if err := q.Preload("User").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(pageSize).
		Find(&posts).Error; err != nil {
		return nil, false, err
	}

	hasMore := int64(offset+len(posts)) < total
	return posts, hasMore, nil
}

// Update replaces title and content of an existing post.
func (s *GormPostStore) Update(ctx context.Context, id uint, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" || content == "" {
		return nil, ErrValidation
	}

	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	post.Title = title
	post.Content = content
	if err := s.db.WithContext(ctx).
		Model(&post).
		Select("title", "content").
		Updates(map[string]interface{}{"title": title, "content": content}).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post.
func (s *GormPostStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
