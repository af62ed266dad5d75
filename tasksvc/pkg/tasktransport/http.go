package tasktransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
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
	"github.com/ichigozero/tasktracker/authsvc/pkg/authservice"
	"github.com/ichigozero/tasktracker/authsvc/pkg/authtransport"
	"github.com/ichigozero/tasktracker/envelope"
	"github.com/ichigozero/tasktracker/tasksvc"
	"github.com/ichigozero/tasktracker/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/tasktracker/tasksvc/pkg/taskservice"
	"github.com/ichigozero/tasktracker/validation"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// NewHTTPHandler serves the task endpoints under /tasks. Every route
// requires a resolved caller.
func NewHTTPHandler(endpoints taskendpoint.Set, auth authservice.Service, enc envelope.Encoder, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(enc.EncodeError),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	tasksHandler := httptransport.NewServer(
		endpoints.TasksEndpoint,
		decodeHTTPTasksRequest,
		enc.EncodeResponse,
		options...,
	)

	createTaskHandler := httptransport.NewServer(
		endpoints.CreateTaskEndpoint,
		decodeHTTPCreateTaskRequest,
		enc.EncodeResponse,
		options...,
	)

	taskHandler := httptransport.NewServer(
		endpoints.TaskEndpoint,
		decodeHTTPTaskRequest,
		enc.EncodeResponse,
		options...,
	)

	updateTaskHandler := httptransport.NewServer(
		endpoints.UpdateTaskEndpoint,
		decodeHTTPUpdateTaskRequest,
		enc.EncodeResponse,
		options...,
	)

	deleteTaskHandler := httptransport.NewServer(
		endpoints.DeleteTaskEndpoint,
		decodeHTTPDeleteTaskRequest,
		enc.EncodeResponse,
		options...,
	)

	archiveTaskHandler := httptransport.NewServer(
		endpoints.ArchiveTaskEndpoint,
		decodeHTTPArchiveTaskRequest,
		enc.EncodeResponse,
		options...,
	)

	r := mux.NewRouter()
	r.NotFoundHandler = enc.NotFoundHandler()
	r.MethodNotAllowedHandler = enc.MethodNotAllowedHandler()
	r.Use(authtransport.NewAuthenticater(auth, enc))

	r.Methods("GET").Path("/tasks").Handler(tasksHandler)
	r.Methods("POST").Path("/tasks").Handler(createTaskHandler)
	r.Methods("GET").Path("/tasks/{task_id}").Handler(taskHandler)
	r.Methods("PATCH").Path("/tasks/{task_id}").Handler(updateTaskHandler)
	r.Methods("DELETE").Path("/tasks/{task_id}").Handler(deleteTaskHandler)
	r.Methods("POST").Path("/tasks/{task_id}/archive").Handler(archiveTaskHandler)

	return r
}

func decodeHTTPTasksRequest(_ context.Context, r *http.Request) (interface{}, error) {
	status := tasksvc.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		return nil, &validation.Error{
			Message: "invalid status filter",
			Fields: []validation.FieldError{{
				Field:   "status",
				Message: "must be one of TODO, IN_PROGRESS, DONE, ARCHIVED",
			}},
		}
	}
	return taskendpoint.TasksRequest{Status: status}, nil
}

func decodeHTTPCreateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req taskendpoint.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, validation.Malformed(err)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeHTTPTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	taskID, err := validation.ParseUUID("id", mux.Vars(r)["task_id"])
	if err != nil {
		return nil, err
	}

	return taskendpoint.TaskRequest{
		TaskID: taskID,
	}, nil
}

func decodeHTTPUpdateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	taskID, err := validation.ParseUUID("id", mux.Vars(r)["task_id"])
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, validation.Malformed(err)
	}

	var req taskendpoint.UpdateTaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, validation.Malformed(err)
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		return nil, validation.Malformed(err)
	}
	_, req.SetDescription = present["description"]
	req.TaskID = taskID

	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeHTTPDeleteTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	taskID, err := validation.ParseUUID("id", mux.Vars(r)["task_id"])
	if err != nil {
		return nil, err
	}

	return taskendpoint.DeleteTaskRequest{
		TaskID: taskID,
	}, nil
}

func decodeHTTPArchiveTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	taskID, err := validation.ParseUUID("id", mux.Vars(r)["task_id"])
	if err != nil {
		return nil, err
	}

	return taskendpoint.ArchiveTaskRequest{
		TaskID: taskID,
	}, nil
}

// NewHTTPClient returns a Service backed by the HTTP API at instance. The
// caller passed to each method is sent as the x-user-id header.
func NewHTTPClient(instance string, logger log.Logger) (taskservice.Service, error) {
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

	options := []httptransport.ClientOption{
		httptransport.ClientBefore(authtransport.ContextToHTTP()),
	}

	breaker := func(name string) endpoint.Middleware {
		return circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
		}))
	}

	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = httptransport.NewClient(
			"GET",
			copyURL(u, "/tasks"),
			encodeHTTPTasksRequest,
			decodeHTTPTasksResponse,
			options...,
		).Endpoint()
		tasksEndpoint = limiter(tasksEndpoint)
		tasksEndpoint = breaker("Tasks")(tasksEndpoint)
	}

	var taskEndpoint endpoint.Endpoint
	{
		taskEndpoint = httptransport.NewClient(
			"GET",
			copyURL(u, "/tasks"),
			encodeHTTPTaskPathRequest,
			decodeHTTPTaskResponse,
			options...,
		).Endpoint()
		taskEndpoint = limiter(taskEndpoint)
		taskEndpoint = breaker("Task")(taskEndpoint)
	}

	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = httptransport.NewClient(
			"POST",
			copyURL(u, "/tasks"),
			httptransport.EncodeJSONRequest,
			decodeHTTPCreateTaskResponse,
			options...,
		).Endpoint()
		createTaskEndpoint = limiter(createTaskEndpoint)
		createTaskEndpoint = breaker("CreateTask")(createTaskEndpoint)
	}

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = httptransport.NewClient(
			"PATCH",
			copyURL(u, "/tasks"),
			encodeHTTPUpdateTaskRequest,
			decodeHTTPUpdateTaskResponse,
			options...,
		).Endpoint()
		updateTaskEndpoint = limiter(updateTaskEndpoint)
		updateTaskEndpoint = breaker("UpdateTask")(updateTaskEndpoint)
	}

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = httptransport.NewClient(
			"DELETE",
			copyURL(u, "/tasks"),
			encodeHTTPTaskPathRequest,
			decodeHTTPDeleteTaskResponse,
			options...,
		).Endpoint()
		deleteTaskEndpoint = limiter(deleteTaskEndpoint)
		deleteTaskEndpoint = breaker("DeleteTask")(deleteTaskEndpoint)
	}

	var archiveTaskEndpoint endpoint.Endpoint
	{
		archiveTaskEndpoint = httptransport.NewClient(
			"POST",
			copyURL(u, "/tasks"),
			encodeHTTPTaskPathRequest,
			decodeHTTPArchiveTaskResponse,
			options...,
		).Endpoint()
		archiveTaskEndpoint = limiter(archiveTaskEndpoint)
		archiveTaskEndpoint = breaker("ArchiveTask")(archiveTaskEndpoint)
	}

	return taskendpoint.Set{
		TasksEndpoint:       tasksEndpoint,
		TaskEndpoint:        taskEndpoint,
		CreateTaskEndpoint:  createTaskEndpoint,
		UpdateTaskEndpoint:  updateTaskEndpoint,
		DeleteTaskEndpoint:  deleteTaskEndpoint,
		ArchiveTaskEndpoint: archiveTaskEndpoint,
	}, nil
}

func copyURL(base *url.URL, p string) *url.URL {
	next := *base
	next.Path = path.Join(base.Path, p)
	return &next
}

func encodeHTTPTasksRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.TasksRequest)
	if req.Status != "" {
		q := r.URL.Query()
		q.Set("status", string(req.Status))
		r.URL.RawQuery = q.Encode()
	}
	return nil
}

// encodeHTTPTaskPathRequest appends the task ID, plus /archive for archive
// requests, to the request path.
func encodeHTTPTaskPathRequest(_ context.Context, r *http.Request, request interface{}) error {
	switch req := request.(type) {
	case taskendpoint.TaskRequest:
		r.URL.Path = path.Join(r.URL.Path, req.TaskID.String())
	case taskendpoint.DeleteTaskRequest:
		r.URL.Path = path.Join(r.URL.Path, req.TaskID.String())
	case taskendpoint.ArchiveTaskRequest:
		r.URL.Path = path.Join(r.URL.Path, req.TaskID.String(), "archive")
	}
	return nil
}

// encodeHTTPUpdateTaskRequest sends only the fields the patch sets, so an
// absent description stays absent on the wire.
func encodeHTTPUpdateTaskRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.UpdateTaskRequest)
	r.URL.Path = path.Join(r.URL.Path, req.TaskID.String())

	body := map[string]interface{}{}
	if req.Title != nil {
		body["title"] = *req.Title
	}
	if req.SetDescription {
		body["description"] = req.Description
	}
	if req.Status != nil {
		body["status"] = *req.Status
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.ContentLength = int64(buf.Len())
	r.Body = io.NopCloser(&buf)
	return nil
}

func decodeHTTPTasksResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var tasks []tasksvc.Task
	err := envelope.Decode(r, &tasks)
	if remote, ok := err.(*envelope.RemoteError); ok {
		return taskendpoint.TasksResponse{Err: remote}, nil
	}
	return taskendpoint.TasksResponse{Tasks: tasks}, err
}

func decodeHTTPTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	t, err := decodeTask(r)
	if remote, ok := err.(*envelope.RemoteError); ok {
		return taskendpoint.TaskResponse{Err: remote}, nil
	}
	return taskendpoint.TaskResponse{Task: t}, err
}

func decodeHTTPCreateTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	t, err := decodeTask(r)
	if remote, ok := err.(*envelope.RemoteError); ok {
		return taskendpoint.CreateTaskResponse{Err: remote}, nil
	}
	return taskendpoint.CreateTaskResponse{Task: t}, err
}

func decodeHTTPUpdateTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	t, err := decodeTask(r)
	if remote, ok := err.(*envelope.RemoteError); ok {
		return taskendpoint.UpdateTaskResponse{Err: remote}, nil
	}
	return taskendpoint.UpdateTaskResponse{Task: t}, err
}

func decodeHTTPDeleteTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	err := envelope.Decode(r, nil)
	if remote, ok := err.(*envelope.RemoteError); ok {
		return taskendpoint.DeleteTaskResponse{Err: remote}, nil
	}
	return taskendpoint.DeleteTaskResponse{}, err
}

func decodeHTTPArchiveTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	t, err := decodeTask(r)
	if remote, ok := err.(*envelope.RemoteError); ok {
		return taskendpoint.ArchiveTaskResponse{Err: remote}, nil
	}
	return taskendpoint.ArchiveTaskResponse{Task: t}, err
}

func decodeTask(r *http.Response) (tasksvc.Task, error) {
	var t tasksvc.Task
	err := envelope.Decode(r, &t)
	return t, err
}
