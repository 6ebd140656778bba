package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xelth-com/huissierpro/internal/cache"
	"github.com/xelth-com/huissierpro/internal/models"
)

// Cache partition and key holding the account list when no database is configured.
const (
	cachePartition = "_accounts"
	cacheKey       = "users"
)

// CacheStore keeps accounts in the local cache for offline deployments.
type CacheStore struct {
	mu    sync.Mutex
	local cache.Store
	now   func() time.Time
}

// NewCacheStore creates an account store over local.
func NewCacheStore(local cache.Store) *CacheStore {
	return &CacheStore{local: local, now: time.Now}
}

func (s *CacheStore) ByMatricule(_ context.Context, matricule string) (models.UserAuth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return models.UserAuth{}, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Matricule, matricule) && u.IsActive {
			return u, nil
		}
	}
	return models.UserAuth{}, ErrAccountNotFound
}

func (s *CacheStore) Create(_ context.Context, user *models.UserAuth) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	for _, u := range users {
		if strings.EqualFold(u.Matricule, user.Matricule) || strings.EqualFold(u.Email, user.Email) {
			return ErrAccountExists
		}
	}
	for _, u := range users {
		if u.StudyID == user.StudyID {
			return ErrStudyTaken
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = "huissier"
	}
	user.IsActive = true
	now := s.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	return s.store(append(users, *user))
}

func (s *CacheStore) RecordLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == id {
			t := at.UTC()
			users[i].LastLogin = &t
			return s.store(users)
		}
	}
	return ErrAccountNotFound
}

// storedUser keeps the password hash, which UserAuth hides from JSON.
type storedUser struct {
	models.UserAuth
	PasswordHash string `json:"passwordHash"`
}

func (s *CacheStore) load() ([]models.UserAuth, error) {
	data, err := s.local.Get(cachePartition, cacheKey)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}

	var stored []storedUser
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	users := make([]models.UserAuth, len(stored))
	for i, su := range stored {
		users[i] = su.UserAuth
		users[i].Password = su.PasswordHash
	}
	return users, nil
}

func (s *CacheStore) store(users []models.UserAuth) error {
	stored := make([]storedUser, len(users))
	for i, u := range users {
		stored[i] = storedUser{UserAuth: u, PasswordHash: u.Password}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return s.local.Set(cachePartition, cacheKey, data)
}
