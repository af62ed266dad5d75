package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/usersvc"
	pkgerrors "github.com/pkg/errors"
	libgorm "gorm.io/gorm"
)

type userRepository struct {
	db *libgorm.DB
}

func NewUserRepository(db *libgorm.DB) usersvc.UserRepository {
	return &userRepository{db}
}

func (u *userRepository) Create(ctx context.Context, email, name string) (usersvc.User, error) {
	user := usersvc.User{Email: email, Name: name}
	result := u.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		return usersvc.User{}, pkgerrors.Wrap(result.Error, "create user")
	}

	return user, nil
}

func (u *userRepository) Find(ctx context.Context, id uuid.UUID) (usersvc.User, error) {
	var user usersvc.User
	result := u.db.WithContext(ctx).Where("id = ?", id).First(&user)

	return user, notFound(result.Error, "find user")
}

func (u *userRepository) FindByEmail(ctx context.Context, email string) (usersvc.User, error) {
	var user usersvc.User
	result := u.db.WithContext(ctx).Where("email = ?", email).First(&user)

	return user, notFound(result.Error, "find user by email")
}

func notFound(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, libgorm.ErrRecordNotFound):
		return usersvc.ErrUserNotFound
	}
	return pkgerrors.Wrap(err, op)
}
