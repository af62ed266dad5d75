package userservice

import (
	"context"
	"errors"

	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/usersvc"
)

type Service interface {
	User(ctx context.Context, id uuid.UUID) (usersvc.User, error)
	CreateUser(ctx context.Context, email, name string) (usersvc.User, error)
}

func New(u usersvc.UserRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(u)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	users usersvc.UserRepository
}

func NewBasicService(u usersvc.UserRepository) Service {
	return basicService{users: u}
}

func (s basicService) User(ctx context.Context, id uuid.UUID) (usersvc.User, error) {
	if id == uuid.Nil {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}
	return s.users.Find(ctx, id)
}

// CreateUser checks the email against existing users before inserting. The
// check and the insert are separate statements; the unique index on email
// is the last line of defence when two creations race.
func (s basicService) CreateUser(ctx context.Context, email, name string) (usersvc.User, error) {
	if email == "" || name == "" {
		return usersvc.User{}, usersvc.ErrInvalidArgument
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return usersvc.User{}, usersvc.ErrEmailTaken
	case !errors.Is(err, usersvc.ErrUserNotFound):
		return usersvc.User{}, err
	}

	return s.users.Create(ctx, email, name)
}
