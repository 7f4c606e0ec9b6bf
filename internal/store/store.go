package store

import (
	"errors"

	"gorm.io/gorm"

	"sportscube-api/internal/model"
)

// Store is the data access layer over the Users and Orders relations.
// It wraps an injected gorm handle; all statements go through bound
// parameters.
type Store struct {
	db *gorm.DB
}

// New creates a Store over the given database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// FindUserByEmail returns the user with the given email, or (nil, nil)
// when no such user exists.
func (s *Store) FindUserByEmail(email string) (*model.User, error) {
	var user model.User
	result := s.db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &user, nil
}

// FindUserByID returns the user with the given id, or (nil, nil) when no
// such user exists.
func (s *Store) FindUserByID(id uint) (*model.User, error) {
	var user model.User
	result := s.db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &user, nil
}

// CreateUser inserts a new user row. The email unique index rejects
// concurrent duplicate signups that slip past the handler's lookup.
func (s *Store) CreateUser(user *model.User) error {
	return s.db.Create(user).Error
}

// CreateOrderItems inserts one Order row per cart line inside a single
// transaction, so a mid-batch failure leaves no partial order behind.
func (s *Store) CreateOrderItems(orders []model.Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range orders {
			if err := tx.Create(&orders[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
