// Package apigateway mounts the user and task handlers under /api next to
// the health and metrics routes.
package apigateway

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/kit/log"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/ichigozero/tasktracker/authsvc/pkg/authservice"
	"github.com/ichigozero/tasktracker/envelope"
	"github.com/ichigozero/tasktracker/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/tasktracker/tasksvc/pkg/tasktransport"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userendpoint"
	"github.com/ichigozero/tasktracker/usersvc/pkg/usertransport"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const BasePath = "/api"

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func NewHTTPHandler(
	users userendpoint.Set,
	tasks taskendpoint.Set,
	auth authservice.Service,
	enc envelope.Encoder,
	logger log.Logger,
) http.Handler {
	var (
		userHandler = usertransport.NewHTTPHandler(users, enc, log.With(logger, "component", "users"))
		taskHandler = tasktransport.NewHTTPHandler(tasks, auth, enc, log.With(logger, "component", "tasks"))
	)

	healthHandler := httptransport.NewServer(
		func(context.Context, interface{}) (interface{}, error) {
			return HealthResponse{Status: "ok", Timestamp: time.Now().UTC()}, nil
		},
		httptransport.NopRequestDecoder,
		enc.EncodeResponse,
		httptransport.ServerErrorEncoder(enc.EncodeError),
	)

	r := mux.NewRouter()
	r.NotFoundHandler = enc.NotFoundHandler()
	r.MethodNotAllowedHandler = enc.MethodNotAllowedHandler()
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

	api := r.PathPrefix(BasePath).Subrouter()
	api.NotFoundHandler = enc.NotFoundHandler()
	api.MethodNotAllowedHandler = enc.MethodNotAllowedHandler()

	api.Methods("GET").Path("/health").Handler(healthHandler)
	api.PathPrefix("/users").Handler(http.StripPrefix(BasePath, userHandler))
	api.PathPrefix("/tasks").Handler(http.StripPrefix(BasePath, taskHandler))

	return r
}
