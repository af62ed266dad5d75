package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ichigozero/tasktracker/tasksvc"
	pkgerrors "github.com/pkg/errors"
	stdgorm "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type taskRepository struct {
	db *stdgorm.DB
}

func NewTaskRepository(db *stdgorm.DB) tasksvc.TaskRepository {
	return &taskRepository{db}
}

func (t taskRepository) Create(ctx context.Context, task tasksvc.Task) (tasksvc.Task, error) {
	if task.Status == "" {
		task.Status = tasksvc.StatusTodo
	}
	task.User = nil

	result := t.db.WithContext(ctx).Omit(clause.Associations).Create(&task)
	if result.Error != nil {
		return tasksvc.Task{}, pkgerrors.Wrap(result.Error, "create task")
	}

	return task, nil
}

func (t taskRepository) FindAll(ctx context.Context, userID uuid.UUID, status tasksvc.Status) ([]tasksvc.Task, error) {
	query := t.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	tasks := []tasksvc.Task{}
	result := query.Order("created_at DESC").Find(&tasks)
	if result.Error != nil {
		return nil, pkgerrors.Wrap(result.Error, "list tasks")
	}

	return tasks, nil
}

func (t taskRepository) Find(ctx context.Context, taskID uuid.UUID) (tasksvc.Task, error) {
	var task tasksvc.Task
	result := t.db.WithContext(ctx).Where("id = ?", taskID).First(&task)

	if result.Error != nil {
		if errors.Is(result.Error, stdgorm.ErrRecordNotFound) {
			return tasksvc.Task{}, tasksvc.ErrTaskNotFound
		}
		return tasksvc.Task{}, pkgerrors.Wrap(result.Error, "find task")
	}

	return task, nil
}

func (t taskRepository) Update(ctx context.Context, taskID uuid.UUID, p tasksvc.Patch) (tasksvc.Task, error) {
	fields := map[string]interface{}{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.SetDescription {
		fields["description"] = p.Description
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}

	return t.updates(ctx, taskID, fields, "update task")
}

func (t taskRepository) Archive(ctx context.Context, taskID uuid.UUID) (tasksvc.Task, error) {
	return t.updates(ctx, taskID, map[string]interface{}{"status": tasksvc.StatusArchived}, "archive task")
}

func (t taskRepository) updates(ctx context.Context, taskID uuid.UUID, fields map[string]interface{}, op string) (tasksvc.Task, error) {
	if len(fields) > 0 {
		result := t.db.WithContext(ctx).
			Model(&tasksvc.Task{}).
			Where("id = ?", taskID).
			Updates(fields)
		if result.Error != nil {
			return tasksvc.Task{}, pkgerrors.Wrap(result.Error, op)
		}
		if result.RowsAffected == 0 {
			return tasksvc.Task{}, tasksvc.ErrTaskNotFound
		}
	}

	return t.Find(ctx, taskID)
}

func (t taskRepository) Delete(ctx context.Context, taskID uuid.UUID) error {
	result := t.db.WithContext(ctx).Where("id = ?", taskID).Delete(&tasksvc.Task{})

	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "delete task")
	}
	if result.RowsAffected == 0 {
		return tasksvc.ErrTaskNotFound
	}
	return nil
}
