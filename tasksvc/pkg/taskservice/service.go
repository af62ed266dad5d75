package taskservice

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/tasksvc"
)

// Service applies ownership rules to every task operation. callerID is
// the resolved identity of the requesting user.
type Service interface {
	Tasks(ctx context.Context, callerID uuid.UUID, status tasksvc.Status) ([]tasksvc.Task, error)
	Task(ctx context.Context, callerID, taskID uuid.UUID) (tasksvc.Task, error)
	CreateTask(ctx context.Context, callerID uuid.UUID, title string, description *string, status tasksvc.Status) (tasksvc.Task, error)
	UpdateTask(ctx context.Context, callerID, taskID uuid.UUID, p tasksvc.Patch) (tasksvc.Task, error)
	DeleteTask(ctx context.Context, callerID, taskID uuid.UUID) error
	ArchiveTask(ctx context.Context, callerID, taskID uuid.UUID) (tasksvc.Task, error)
}

func New(t tasksvc.TaskRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(t)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	tasks tasksvc.TaskRepository
}

func NewBasicService(t tasksvc.TaskRepository) Service {
	return basicService{tasks: t}
}

func (s basicService) Tasks(ctx context.Context, callerID uuid.UUID, status tasksvc.Status) ([]tasksvc.Task, error) {
	if callerID == uuid.Nil || (status != "" && !status.Valid()) {
		return nil, tasksvc.ErrInvalidArgument
	}
	return s.tasks.FindAll(ctx, callerID, status)
}

func (s basicService) Task(ctx context.Context, callerID, taskID uuid.UUID) (tasksvc.Task, error) {
	return s.owned(ctx, callerID, taskID)
}

func (s basicService) CreateTask(ctx context.Context, callerID uuid.UUID, title string, description *string, status tasksvc.Status) (tasksvc.Task, error) {
	if callerID == uuid.Nil || title == "" {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}
	if status == "" {
		status = tasksvc.StatusTodo
	}
	if !status.Valid() {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}

	return s.tasks.Create(ctx, tasksvc.Task{
		Title:       title,
		Description: description,
		Status:      status,
		UserID:      callerID,
	})
}

func (s basicService) UpdateTask(ctx context.Context, callerID, taskID uuid.UUID, p tasksvc.Patch) (tasksvc.Task, error) {
	if p.Title != nil && *p.Title == "" {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}
	if p.Status != nil && !p.Status.Valid() {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}

	task, err := s.owned(ctx, callerID, taskID)
	if err != nil {
		return tasksvc.Task{}, err
	}
	if p.Empty() {
		return task, nil
	}

	return s.tasks.Update(ctx, taskID, p)
}

func (s basicService) DeleteTask(ctx context.Context, callerID, taskID uuid.UUID) error {
	if _, err := s.owned(ctx, callerID, taskID); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, taskID)
}

// ArchiveTask sets the status to ARCHIVED whatever it was before,
// including when the task is already archived.
func (s basicService) ArchiveTask(ctx context.Context, callerID, taskID uuid.UUID) (tasksvc.Task, error) {
	if _, err := s.owned(ctx, callerID, taskID); err != nil {
		return tasksvc.Task{}, err
	}
	return s.tasks.Archive(ctx, taskID)
}

// owned loads the task and checks that callerID owns it. A missing task
// is reported before a foreign one.
func (s basicService) owned(ctx context.Context, callerID, taskID uuid.UUID) (tasksvc.Task, error) {
	task, err := s.tasks.Find(ctx, taskID)
	if err != nil {
		return tasksvc.Task{}, err
	}
	if task.UserID != callerID {
		return tasksvc.Task{}, tasksvc.ErrForbidden
	}
	return task, nil
}
