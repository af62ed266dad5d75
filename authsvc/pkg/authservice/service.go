package authservice

import (
	"context"
	"errors"

	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/authsvc"
	"github.com/ichigozero/tasktracker/usersvc"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userservice"
	"github.com/ichigozero/tasktracker/validation"
)

type Service interface {
	// Resolve turns a raw credential into the identifier of an existing
	// user.
	Resolve(ctx context.Context, credential string) (uuid.UUID, error)
}

func New(users userservice.Service, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(users)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	users userservice.Service
}

func NewBasicService(users userservice.Service) Service {
	return basicService{users: users}
}

func (s basicService) Resolve(ctx context.Context, credential string) (uuid.UUID, error) {
	if credential == "" {
		return uuid.Nil, authsvc.ErrCredentialMissing
	}
	if !validation.IsUUID(credential) {
		return uuid.Nil, authsvc.ErrCredentialMalformed
	}

	id, err := uuid.Parse(credential)
	if err != nil {
		return uuid.Nil, authsvc.ErrCredentialMalformed
	}

	u, err := s.users.User(ctx, id)
	switch {
	case errors.Is(err, usersvc.ErrUserNotFound):
		return uuid.Nil, authsvc.ErrUnknownUser
	case err != nil:
		return uuid.Nil, err
	}

	return u.ID, nil
}
