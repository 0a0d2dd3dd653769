package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/miniblog/miniblog/models"
	"github.com/miniblog/miniblog/utils"
)

// GormUserStore implements UserStore on a relational database.
type GormUserStore struct {
	db       *gorm.DB
	hashCost int
}

// NewGormUserStore creates a GormUserStore. hashCost is the bcrypt work
// factor; values below bcrypt's minimum fall back to the default cost.
func NewGormUserStore(db *gorm.DB, hashCost int) *GormUserStore {
	return &GormUserStore{db: db, hashCost: hashCost}
}

// Register persists a new user after checking username and email uniqueness.
func (s *GormUserStore) Register(ctx context.Context, username, email, rawPassword string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || rawPassword == "" {
		return nil, ErrValidation
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateIdentity
	}

	hash, err := utils.HashPassword(rawPassword, s.hashCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// The unique indexes remain the last line of defense against a
		// concurrent registration racing the existence check above.
		if isDuplicateKeyErr(err) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername returns the user with the given username.
func (s *GormUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByID returns the user with the given id.
func (s *GormUserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// VerifyPassword checks rawPassword against the stored bcrypt hash.
func (s *GormUserStore) VerifyPassword(user *models.User, rawPassword string) bool {
	if user == nil {
		return false
	}
	return utils.CheckPassword(user.PasswordHash, rawPassword)
}

func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL error 1062 surfaces as a plain driver error through gorm.
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
