package main

import (
	"errors"
	"strings"

	"aula/models"

	"gorm.io/gorm"
)

// UserStore is the persistence collaborator the auth flows depend on.
// Lookups return (nil, nil) on a miss; an error always means the store itself failed.
type UserStore interface {
	FindByEmailOrName(email, name string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	Create(u *models.User) error
	// UpsertByEmail returns the user with the given email, creating one if
	// absent. Repeated calls with the same email are idempotent.
	UpsertByEmail(email, name string) (*models.User, error)
}

type gormUserStore struct {
	db *gorm.DB
}

func newGormUserStore(db *gorm.DB) *gormUserStore {
	return &gormUserStore{db: db}
}

// emailOrNameCriteria builds the lookup clause, skipping empty criteria. An
// OAuth-created account can carry an empty name; a bare `name = ''` clause
// would let it match lookups that supplied only an email and shadow the real
// row.
func emailOrNameCriteria(email, name string) (string, []interface{}, bool) {
	switch {
	case email != "" && name != "":
		return "email = ? OR name = ?", []interface{}{email, name}, true
	case email != "":
		return "email = ?", []interface{}{email}, true
	case name != "":
		return "name = ?", []interface{}{name}, true
	}
	return "", nil, false
}

func (s *gormUserStore) FindByEmailOrName(email, name string) (*models.User, error) {
	clause, args, ok := emailOrNameCriteria(email, name)
	if !ok {
		return nil, nil
	}
	var user models.User
	err := s.db.Where(clause, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) Create(u *models.User) error {
	return s.db.Create(u).Error
}

func (s *gormUserStore) UpsertByEmail(email, name string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user = models.User{Email: email, Name: name}
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // concurrent first login with the same email
			var existing models.User
			if err2 := s.db.Where("email = ?", email).First(&existing).Error; err2 == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
