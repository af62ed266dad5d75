package usertransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/ichigozero/tasktracker/envelope"
	"github.com/ichigozero/tasktracker/usersvc"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userendpoint"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userservice"
	"github.com/ichigozero/tasktracker/validation"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// NewHTTPHandler serves the user endpoints under /users.
func NewHTTPHandler(endpoints userendpoint.Set, enc envelope.Encoder, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(enc.EncodeError),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	createUserHandler := httptransport.NewServer(
		endpoints.CreateUserEndpoint,
		decodeHTTPCreateUserRequest,
		enc.EncodeResponse,
		options...,
	)

	userHandler := httptransport.NewServer(
		endpoints.UserEndpoint,
		decodeHTTPUserRequest,
		enc.EncodeResponse,
		options...,
	)

	r := mux.NewRouter()
	r.NotFoundHandler = enc.NotFoundHandler()
	r.MethodNotAllowedHandler = enc.MethodNotAllowedHandler()

	r.Methods("POST").Path("/users").Handler(createUserHandler)
	r.Methods("GET").Path("/users/{id}").Handler(userHandler)

	return r
}

func decodeHTTPCreateUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req userendpoint.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, validation.Malformed(err)
	}

	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeHTTPUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := validation.ParseUUID("id", mux.Vars(r)["id"])
	if err != nil {
		return nil, err
	}
	return userendpoint.UserRequest{ID: id}, nil
}

// NewHTTPClient returns a Service backed by the HTTP API at instance. The
// instance may carry a base path; /api is assumed when it does not.
func NewHTTPClient(instance string, logger log.Logger) (userservice.Service, error) {
	if !strings.HasPrefix(instance, "http") {
		instance = "http://" + instance
	}
	u, err := url.Parse(instance)
	if err != nil {
		return nil, err
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/api"
	}

	limiter := ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Second), 100))

	var options []httptransport.ClientOption

	var userEndpoint endpoint.Endpoint
	{
		userEndpoint = httptransport.NewClient(
			"GET",
			copyURL(u, "/users"),
			encodeHTTPUserRequest,
			decodeHTTPUserResponse,
			options...,
		).Endpoint()
		userEndpoint = limiter(userEndpoint)
		userEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "User",
			Timeout: 30 * time.Second,
		}))(userEndpoint)
	}

	var createUserEndpoint endpoint.Endpoint
	{
		createUserEndpoint = httptransport.NewClient(
			"POST",
			copyURL(u, "/users"),
			httptransport.EncodeJSONRequest,
			decodeHTTPCreateUserResponse,
			options...,
		).Endpoint()
		createUserEndpoint = limiter(createUserEndpoint)
		createUserEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "CreateUser",
			Timeout: 30 * time.Second,
		}))(createUserEndpoint)
	}

	return userendpoint.Set{
		UserEndpoint:       userEndpoint,
		CreateUserEndpoint: createUserEndpoint,
	}, nil
}

func copyURL(base *url.URL, p string) *url.URL {
	next := *base
	next.Path = path.Join(base.Path, p)
	return &next
}

func encodeHTTPUserRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(userendpoint.UserRequest)
	r.URL.Path = path.Join(r.URL.Path, req.ID.String())
	return nil
}

func decodeHTTPUserResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var u usersvc.User
	err := envelope.Decode(r, &u)
	if remote, ok := err.(*envelope.RemoteError); ok {
		return userendpoint.UserResponse{Err: remote}, nil
	}
	return userendpoint.UserResponse{User: u}, err
}

func decodeHTTPCreateUserResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var u usersvc.User
	err := envelope.Decode(r, &u)
	if remote, ok := err.(*envelope.RemoteError); ok {
		return userendpoint.CreateUserResponse{Err: remote}, nil
	}
	return userendpoint.CreateUserResponse{User: u}, err
}
