package repository

import (
	"context"

	"gorm.io/gorm"
)

// AccountStore runs work that must create a user and its profile atomically.
type AccountStore interface {
	WithinTransaction(ctx context.Context, fn func(users UserRepository, profiles ProfileRepository) error) error
}

type GormAccountStore struct {
	db *gorm.DB
}

func NewGormAccountStore(db *gorm.DB) AccountStore {
	return &GormAccountStore{db: db}
}

func (s *GormAccountStore) WithinTransaction(ctx context.Context, fn func(users UserRepository, profiles ProfileRepository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormUserRepository(tx), NewGormProfileRepository(tx))
	})
}
