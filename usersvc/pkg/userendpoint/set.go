package userendpoint

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/usersvc"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userservice"
)

type Set struct {
	UserEndpoint       endpoint.Endpoint
	CreateUserEndpoint endpoint.Endpoint
}

func New(svc userservice.Service, logger log.Logger) Set {
	var userEndpoint endpoint.Endpoint
	{
		userEndpoint = MakeUserEndpoint(svc)
		userEndpoint = LoggingMiddleware(log.With(logger, "method", "User"))(userEndpoint)
	}

	var createUserEndpoint endpoint.Endpoint
	{
		createUserEndpoint = MakeCreateUserEndpoint(svc)
		createUserEndpoint = LoggingMiddleware(log.With(logger, "method", "CreateUser"))(createUserEndpoint)
	}

	return Set{
		UserEndpoint:       userEndpoint,
		CreateUserEndpoint: createUserEndpoint,
	}
}

func (s Set) User(ctx context.Context, id uuid.UUID) (usersvc.User, error) {
	resp, err := s.UserEndpoint(ctx, UserRequest{ID: id})
	if err != nil {
		return usersvc.User{}, err
	}
	response := resp.(UserResponse)
	return response.User, response.Err
}

func (s Set) CreateUser(ctx context.Context, email, name string) (usersvc.User, error) {
	resp, err := s.CreateUserEndpoint(ctx, CreateUserRequest{Email: email, Name: name})
	if err != nil {
		return usersvc.User{}, err
	}
	response := resp.(CreateUserResponse)
	return response.User, response.Err
}

func MakeUserEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(UserRequest)
		u, err := s.User(ctx, req.ID)
		return UserResponse{User: u, Err: err}, nil
	}
}

func MakeCreateUserEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(CreateUserRequest)
		u, err := s.CreateUser(ctx, req.Email, req.Name)
		return CreateUserResponse{User: u, Err: err}, nil
	}
}

var (
	_ endpoint.Failer = UserResponse{}
	_ endpoint.Failer = CreateUserResponse{}
)

type UserRequest struct {
	ID uuid.UUID
}

type UserResponse struct {
	User usersvc.User `json:"user"`
	Err  error        `json:"-"`
}

func (r UserResponse) Failed() error        { return r.Err }
func (r UserResponse) Payload() interface{} { return r.User }

type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"required,min=1,max=100"`
}

type CreateUserResponse struct {
	User usersvc.User `json:"user"`
	Err  error        `json:"-"`
}

func (r CreateUserResponse) Failed() error        { return r.Err }
func (r CreateUserResponse) Payload() interface{} { return r.User }
func (r CreateUserResponse) StatusCode() int      { return http.StatusCreated }
