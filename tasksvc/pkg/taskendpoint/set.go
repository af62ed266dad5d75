package taskendpoint

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/authsvc"
	"github.com/ichigozero/tasktracker/tasksvc"
	"github.com/ichigozero/tasktracker/tasksvc/pkg/taskservice"
)

type Set struct {
	TasksEndpoint       endpoint.Endpoint
	TaskEndpoint        endpoint.Endpoint
	CreateTaskEndpoint  endpoint.Endpoint
	UpdateTaskEndpoint  endpoint.Endpoint
	DeleteTaskEndpoint  endpoint.Endpoint
	ArchiveTaskEndpoint endpoint.Endpoint
}

func New(svc taskservice.Service, logger log.Logger) Set {
	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = MakeTasksEndpoint(svc)
		tasksEndpoint = LoggingMiddleware(log.With(logger, "method", "Tasks"))(tasksEndpoint)
	}

	var taskEndpoint endpoint.Endpoint
	{
		taskEndpoint = MakeTaskEndpoint(svc)
		taskEndpoint = LoggingMiddleware(log.With(logger, "method", "Task"))(taskEndpoint)
	}

	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = MakeCreateTaskEndpoint(svc)
		createTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "CreateTask"))(createTaskEndpoint)
	}

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = MakeUpdateTaskEndpoint(svc)
		updateTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "UpdateTask"))(updateTaskEndpoint)
	}

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = MakeDeleteTaskEndpoint(svc)
		deleteTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "DeleteTask"))(deleteTaskEndpoint)
	}

	var archiveTaskEndpoint endpoint.Endpoint
	{
		archiveTaskEndpoint = MakeArchiveTaskEndpoint(svc)
		archiveTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "ArchiveTask"))(archiveTaskEndpoint)
	}

	return Set{
		TasksEndpoint:       tasksEndpoint,
		TaskEndpoint:        taskEndpoint,
		CreateTaskEndpoint:  createTaskEndpoint,
		UpdateTaskEndpoint:  updateTaskEndpoint,
		DeleteTaskEndpoint:  deleteTaskEndpoint,
		ArchiveTaskEndpoint: archiveTaskEndpoint,
	}
}

// The Set methods let a Set stand in for a taskservice.Service. The caller
// travels in the context, where server endpoints read it and HTTP clients
// turn it into the x-user-id header.

func (s Set) Tasks(ctx context.Context, callerID uuid.UUID, status tasksvc.Status) ([]tasksvc.Task, error) {
	resp, err := s.TasksEndpoint(withCaller(ctx, callerID), TasksRequest{Status: status})
	if err != nil {
		return nil, err
	}
	response := resp.(TasksResponse)
	return response.Tasks, response.Err
}

func (s Set) Task(ctx context.Context, callerID, taskID uuid.UUID) (tasksvc.Task, error) {
	resp, err := s.TaskEndpoint(withCaller(ctx, callerID), TaskRequest{TaskID: taskID})
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(TaskResponse)
	return response.Task, response.Err
}

func (s Set) CreateTask(ctx context.Context, callerID uuid.UUID, title string, description *string, status tasksvc.Status) (tasksvc.Task, error) {
	req := CreateTaskRequest{Title: title, Description: description}
	if status != "" {
		req.Status = &status
	}

	resp, err := s.CreateTaskEndpoint(withCaller(ctx, callerID), req)
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(CreateTaskResponse)
	return response.Task, response.Err
}

func (s Set) UpdateTask(ctx context.Context, callerID, taskID uuid.UUID, p tasksvc.Patch) (tasksvc.Task, error) {
	resp, err := s.UpdateTaskEndpoint(
		withCaller(ctx, callerID),
		UpdateTaskRequest{
			TaskID:         taskID,
			Title:          p.Title,
			Description:    p.Description,
			SetDescription: p.SetDescription,
			Status:         p.Status,
		},
	)
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(UpdateTaskResponse)
	return response.Task, response.Err
}

func (s Set) DeleteTask(ctx context.Context, callerID, taskID uuid.UUID) error {
	resp, err := s.DeleteTaskEndpoint(withCaller(ctx, callerID), DeleteTaskRequest{TaskID: taskID})
	if err != nil {
		return err
	}
	response := resp.(DeleteTaskResponse)
	return response.Err
}

func (s Set) ArchiveTask(ctx context.Context, callerID, taskID uuid.UUID) (tasksvc.Task, error) {
	resp, err := s.ArchiveTaskEndpoint(withCaller(ctx, callerID), ArchiveTaskRequest{TaskID: taskID})
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(ArchiveTaskResponse)
	return response.Task, response.Err
}

func MakeTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		callerID, err := caller(ctx)
		if err != nil {
			return TasksResponse{Err: err}, nil
		}

		req := request.(TasksRequest)
		t, err := s.Tasks(ctx, callerID, req.Status)
		return TasksResponse{Tasks: t, Err: err}, nil
	}
}

func MakeTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		callerID, err := caller(ctx)
		if err != nil {
			return TaskResponse{Err: err}, nil
		}

		req := request.(TaskRequest)
		t, err := s.Task(ctx, callerID, req.TaskID)
		return TaskResponse{Task: t, Err: err}, nil
	}
}

func MakeCreateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		callerID, err := caller(ctx)
		if err != nil {
			return CreateTaskResponse{Err: err}, nil
		}

		req := request.(CreateTaskRequest)
		var status tasksvc.Status
		if req.Status != nil {
			status = *req.Status
		}
		t, err := s.CreateTask(ctx, callerID, req.Title, req.Description, status)
		return CreateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeUpdateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		callerID, err := caller(ctx)
		if err != nil {
			return UpdateTaskResponse{Err: err}, nil
		}

		req := request.(UpdateTaskRequest)
		t, err := s.UpdateTask(ctx, callerID, req.TaskID, req.Patch())
		return UpdateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeDeleteTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		callerID, err := caller(ctx)
		if err != nil {
			return DeleteTaskResponse{Err: err}, nil
		}

		req := request.(DeleteTaskRequest)
		err = s.DeleteTask(ctx, callerID, req.TaskID)
		return DeleteTaskResponse{Err: err}, nil
	}
}

func MakeArchiveTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		callerID, err := caller(ctx)
		if err != nil {
			return ArchiveTaskResponse{Err: err}, nil
		}

		req := request.(ArchiveTaskRequest)
		t, err := s.ArchiveTask(ctx, callerID, req.TaskID)
		return ArchiveTaskResponse{Task: t, Err: err}, nil
	}
}

func caller(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(authsvc.UserIDContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, authsvc.ErrCredentialMissing
	}
	return id, nil
}

func withCaller(ctx context.Context, callerID uuid.UUID) context.Context {
	return context.WithValue(ctx, authsvc.UserIDContextKey, callerID)
}

var (
	_ endpoint.Failer = TasksResponse{}
	_ endpoint.Failer = TaskResponse{}
	_ endpoint.Failer = CreateTaskResponse{}
	_ endpoint.Failer = UpdateTaskResponse{}
	_ endpoint.Failer = DeleteTaskResponse{}
	_ endpoint.Failer = ArchiveTaskResponse{}
)

type TasksRequest struct {
	Status tasksvc.Status
}

type TasksResponse struct {
	Tasks []tasksvc.Task `json:"tasks"`
	Err   error          `json:"-"`
}

func (r TasksResponse) Failed() error { return r.Err }

func (r TasksResponse) Payload() interface{} {
	if r.Tasks == nil {
		return []tasksvc.Task{}
	}
	return r.Tasks
}

type TaskRequest struct {
	TaskID uuid.UUID
}

type TaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r TaskResponse) Failed() error        { return r.Err }
func (r TaskResponse) Payload() interface{} { return r.Task }

type CreateTaskRequest struct {
	Title       string          `json:"title" validate:"required,min=1,max=200"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *tasksvc.Status `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS DONE ARCHIVED"`
}

type CreateTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r CreateTaskResponse) Failed() error        { return r.Err }
func (r CreateTaskResponse) Payload() interface{} { return r.Task }
func (r CreateTaskResponse) StatusCode() int      { return http.StatusCreated }

// UpdateTaskRequest mirrors tasksvc.Patch. SetDescription is filled in by
// the decoder from the presence of the description key.
type UpdateTaskRequest struct {
	TaskID         uuid.UUID       `json:"-"`
	Title          *string         `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description    *string         `json:"description" validate:"omitempty,max=2000"`
	SetDescription bool            `json:"-"`
	Status         *tasksvc.Status `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS DONE ARCHIVED"`
}

func (r UpdateTaskRequest) Patch() tasksvc.Patch {
	return tasksvc.Patch{
		Title:          r.Title,
		Description:    r.Description,
		SetDescription: r.SetDescription,
		Status:         r.Status,
	}
}

type UpdateTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r UpdateTaskResponse) Failed() error        { return r.Err }
func (r UpdateTaskResponse) Payload() interface{} { return r.Task }

type DeleteTaskRequest struct {
	TaskID uuid.UUID
}

type DeleteTaskResponse struct {
	Err error `json:"-"`
}

func (r DeleteTaskResponse) Failed() error   { return r.Err }
func (r DeleteTaskResponse) StatusCode() int { return http.StatusNoContent }

type ArchiveTaskRequest struct {
	TaskID uuid.UUID
}

type ArchiveTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r ArchiveTaskResponse) Failed() error        { return r.Err }
func (r ArchiveTaskResponse) Payload() interface{} { return r.Task }
