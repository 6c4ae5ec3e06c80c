// Package memory implements the store repositories in process memory.
// It backs tests and the -storage=memory development mode; nothing is
// persisted across restarts.
package memory

import (
	"context"
	"sync"
	"time"

	"reviewblog/internal/models"
	"reviewblog/internal/store"
)

type UserMemoryStorage struct {
	mu     sync.RWMutex
	users  map[int64]*models.User
	nextID int64
}

func NewUserMemoryStorage() *UserMemoryStorage {
	return &UserMemoryStorage{
		users:  make(map[int64]*models.User),
		nextID: 1,
	}
}

func (s *UserMemoryStorage) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *UserMemoryStorage) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findFirst(func(u *models.User) bool { return u.Email == email }), nil
}

func (s *UserMemoryStorage) FindByNickname(_ context.Context, nickname string) (*models.User, error) {
	return s.findFirst(func(u *models.User) bool { return u.Nickname == nickname }), nil
}

func (s *UserMemoryStorage) findFirst(match func(*models.User) bool) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *UserMemoryStorage) Create(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email || existing.Nickname == u.Nickname {
			return nil, store.ErrDuplicate
		}
	}

	now := time.Now()
	created := &models.User{
		ID:           s.nextID,
		Email:        u.Email,
		Nickname:     u.Nickname,
		PasswordHash: u.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[created.ID] = created
	s.nextID++

	cp := *created
	return &cp, nil
}

func (s *UserMemoryStorage) SetTOTPSecret(_ context.Context, userID int64, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.TOTPSecret = &secret
		u.TOTPEnabled = false
		u.UpdatedAt = time.Now()
	}
	return nil
}

func (s *UserMemoryStorage) EnableTOTP(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.TOTPEnabled = true
		u.UpdatedAt = time.Now()
	}
	return nil
}

// nickname returns the nickname of a user, or "" if unknown.
func (s *UserMemoryStorage) nickname(id int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[id]; ok {
		return u.Nickname
	}
	return ""
}
