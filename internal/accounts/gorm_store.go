package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/xelth-com/huissierpro/internal/models"
)

// GormStore keeps accounts in the user_auths table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ByMatricule(ctx context.Context, matricule string) (models.UserAuth, error) {
	var user models.UserAuth
	err := s.lookup(s.db.WithContext(ctx), matricule).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserAuth{}, ErrAccountNotFound
	}
	if err != nil {
		return models.UserAuth{}, fmt.Errorf("find account: %w", err)
	}
	return user, nil
}

// lookup matches active accounts by matricule regardless of case.
func (s *GormStore) lookup(tx *gorm.DB, matricule string) *gorm.DB {
	return tx.Where("LOWER(matricule) = LOWER(?) AND is_active = ?", matricule, true)
}

func (s *GormStore) Create(ctx context.Context, user *models.UserAuth) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		err := tx.Model(&models.UserAuth{}).
			Where("LOWER(matricule) = LOWER(?) OR LOWER(email) = LOWER(?)", user.Matricule, user.Email).
			Count(&taken).Error
		if err != nil {
			return fmt.Errorf("check account: %w", err)
		}
		if taken > 0 {
			return ErrAccountExists
		}
		if err := tx.Model(&models.UserAuth{}).Where("study_id = ?", user.StudyID).Count(&taken).Error; err != nil {
			return fmt.Errorf("check study: %w", err)
		}
		if taken > 0 {
			return ErrStudyTaken
		}

		err = tx.Create(user).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) || (err != nil && strings.Contains(err.Error(), "duplicate key")) {
			return ErrAccountExists
		}
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		return nil
	})
}
